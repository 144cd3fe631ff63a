package telemetry

import "github.com/shopchat/shopchat-backend/internal/gemini"

// Cost per million tokens, in USD.
const (
	inputCostPerMillion  = 0.075
	outputCostPerMillion = 0.30
)

// Iteration tags distinguishing the first model call of a run from calls
// made after feeding back tool results.
const (
	IterationInitial      = "initial"
	IterationToolResponse = "tool_response"
)

// BreakdownEntry records the token usage of a single model call.
type BreakdownEntry struct {
	IterationType string `json:"iteration_type"`
	InputTokens   int    `json:"input_tokens"`
	OutputTokens  int    `json:"output_tokens"`
	TotalTokens   int    `json:"total_tokens"`
}

// Ledger accumulates token usage over one orchestration run. A run is
// single-threaded, so the ledger needs no locking; it is flushed and cleared
// when the run ends.
type Ledger struct {
	InputTokens  int
	OutputTokens int
	Breakdown    []BreakdownEntry
	ToolsInvoked []string
}

func NewLedger() *Ledger {
	return &Ledger{}
}

// Record accumulates one model call's usage. Accumulation, never overwrite.
func (l *Ledger) Record(iterationType string, usage gemini.UsageMetadata) {
	l.InputTokens += usage.PromptTokenCount
	l.OutputTokens += usage.CandidatesTokenCount
	l.Breakdown = append(l.Breakdown, BreakdownEntry{
		IterationType: iterationType,
		InputTokens:   usage.PromptTokenCount,
		OutputTokens:  usage.CandidatesTokenCount,
		TotalTokens:   usage.TotalTokenCount,
	})
}

// RecordTool notes that a tool was invoked during the run.
func (l *Ledger) RecordTool(name string) {
	l.ToolsInvoked = append(l.ToolsInvoked, name)
}

// TotalTokens is the combined input and output token count.
func (l *Ledger) TotalTokens() int {
	return l.InputTokens + l.OutputTokens
}

// Cost prices the accumulated usage.
func (l *Ledger) Cost() float64 {
	return float64(l.InputTokens)*inputCostPerMillion/1e6 +
		float64(l.OutputTokens)*outputCostPerMillion/1e6
}

// Reset clears the ledger after a flush.
func (l *Ledger) Reset() {
	*l = Ledger{}
}
