package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/shopchat/shopchat-backend/internal/audit"
	"github.com/shopchat/shopchat-backend/internal/commerce"
	"github.com/shopchat/shopchat-backend/internal/gemini"
	"github.com/shopchat/shopchat-backend/internal/models"
	"github.com/shopchat/shopchat-backend/internal/repository"
	"github.com/shopchat/shopchat-backend/internal/telemetry"
	"github.com/shopchat/shopchat-backend/internal/tools"
)

// State of one orchestration run.
type State string

const (
	StateInit      State = "init"
	StateIterating State = "iterating"
	StateCompleted State = "completed"
	StateTimedOut  State = "timed_out"
	StateAborted   State = "aborted"
)

const fallbackMessage = "Sorry, something went wrong on our side. Please try again in a moment."

// LLM is the model client surface the orchestrator drives.
type LLM interface {
	BuildPayload(history []models.ConversationTurn, toolDefs []gemini.Tool, systemInstruction string) (*gemini.GenerateRequest, error)
	Send(ctx context.Context, payload *gemini.GenerateRequest) (*gemini.GenerateResponse, error)
}

// ToolDispatcher executes model-requested function calls.
type ToolDispatcher interface {
	Declarations() []gemini.Tool
	Dispatch(rc models.RequestContext, name string, args gemini.Args) *tools.Result
}

// Metadata travels back to the caller alongside the answer.
type Metadata struct {
	Iterations int `json:"iterations"`
}

// Result is the outcome of one processMessage run.
type Result struct {
	Success   bool     `json:"success"`
	Message   string   `json:"message"`
	CartCount int      `json:"cart_count"`
	Metadata  Metadata `json:"metadata"`
}

// Orchestrator drives the bounded tool-calling loop: history in, model call,
// tool dispatch, history out, until the model stops or a bound trips.
type Orchestrator struct {
	history    repository.HistoryStore
	llm        LLM
	dispatcher ToolDispatcher
	cart       commerce.Cart
	trail      *audit.Trail
	reporter   *telemetry.Reporter
	logger     *logrus.Logger

	maxSteps int
	budget   time.Duration
}

func NewOrchestrator(
	history repository.HistoryStore,
	llm LLM,
	dispatcher ToolDispatcher,
	cart commerce.Cart,
	trail *audit.Trail,
	reporter *telemetry.Reporter,
	logger *logrus.Logger,
	maxSteps int,
	budget time.Duration,
) *Orchestrator {
	return &Orchestrator{
		history:    history,
		llm:        llm,
		dispatcher: dispatcher,
		cart:       cart,
		trail:      trail,
		reporter:   reporter,
		logger:     logger,
		maxSteps:   maxSteps,
		budget:     budget,
	}
}

// run carries the mutable state of one ProcessMessage call.
type run struct {
	rc        models.RequestContext
	sessionID string
	userID    *int64
	message   string

	state       State
	iterations  int
	finalAnswer strings.Builder
	ledger      *telemetry.Ledger
	start       time.Time
}

// ProcessMessage executes one full orchestration run for a sanitized user
// message. It always returns a structured result; internal errors never
// propagate to the caller, and telemetry is flushed on every path.
func (o *Orchestrator) ProcessMessage(ctx context.Context, rc models.RequestContext, sessionID, message string) *Result {
	r := &run{
		rc:        rc,
		sessionID: sessionID,
		message:   message,
		state:     StateInit,
		ledger:    telemetry.NewLedger(),
	}
	if rc.Authenticated() {
		uid := rc.UserID
		r.userID = &uid
	}

	// The user message is persisted fail-closed: without it the model would
	// answer a conversation that never recorded the question.
	if err := o.history.Append(ctx, sessionID, r.userID, models.SenderUser, message); err != nil {
		o.logger.WithError(err).Error("Persisting user message failed")
		return &Result{Success: false, Message: fallbackMessage}
	}

	o.loop(ctx, r)
	return o.finalize(ctx, r)
}

// loop is the bounded iteration state machine. Panics are contained here so
// finalize always runs.
func (o *Orchestrator) loop(ctx context.Context, r *run) {
	defer func() {
		if rec := recover(); rec != nil {
			r.state = StateAborted
			o.logger.WithFields(logrus.Fields{
				"session_id": r.sessionID,
				"panic":      fmt.Sprintf("%v", rec),
			}).Error("Orchestration panicked")
			o.trail.Record(ctx, r.rc, r.sessionID, audit.ActionChatFailed, models.JSONB{
				"panic":      fmt.Sprintf("%v", rec),
				"iterations": r.iterations,
			})
		}
	}()

	r.state = StateIterating
	r.start = time.Now()

	for r.iterations < o.maxSteps {
		// The budget is cooperative: checked at iteration boundaries only.
		if time.Since(r.start) > o.budget {
			r.state = StateTimedOut
			o.trail.Record(ctx, r.rc, r.sessionID, audit.ActionChatTimedOut, models.JSONB{
				"iterations": r.iterations,
				"elapsed_ms": time.Since(r.start).Milliseconds(),
			})
			return
		}

		history, err := o.history.GetHistory(ctx, r.sessionID)
		if err != nil {
			r.state = StateAborted
			o.logger.WithError(err).Error("Loading history failed")
			o.trail.Record(ctx, r.rc, r.sessionID, audit.ActionChatFailed, models.JSONB{
				"error": err.Error(), "stage": "history",
			})
			return
		}

		payload, err := o.llm.BuildPayload(history, o.dispatcher.Declarations(), systemInstruction)
		if err != nil {
			r.state = StateAborted
			o.logger.WithError(err).Error("Building model payload failed")
			o.trail.Record(ctx, r.rc, r.sessionID, audit.ActionChatFailed, models.JSONB{
				"error": err.Error(), "stage": "payload",
			})
			return
		}

		resp, err := o.llm.Send(ctx, payload)
		if err != nil {
			r.state = StateAborted
			o.logger.WithError(err).Error("Model call failed")
			o.trail.Record(ctx, r.rc, r.sessionID, audit.ActionChatFailed, models.JSONB{
				"error": err.Error(), "stage": "llm",
			})
			return
		}

		r.iterations++
		tag := telemetry.IterationToolResponse
		if r.iterations == 1 {
			tag = telemetry.IterationInitial
		}
		r.ledger.Record(tag, resp.UsageMetadata)

		functionCalled := o.handleParts(ctx, r, resp)

		finish := resp.FinishReason()
		switch {
		case finish == gemini.FinishStop && !functionCalled:
			r.state = StateCompleted
			return
		case finish != gemini.FinishStop && finish != gemini.FinishMaxTokens:
			r.state = StateAborted
			o.logger.WithFields(logrus.Fields{
				"session_id":    r.sessionID,
				"finish_reason": finish,
			}).Warn("Unusual finish reason, aborting run")
			o.trail.Record(ctx, r.rc, r.sessionID, audit.ActionChatAborted, models.JSONB{
				"finish_reason": finish,
				"iterations":    r.iterations,
			})
			return
		}
	}

	// Step bound reached without a natural stop.
	r.state = StateAborted
	o.logger.WithFields(logrus.Fields{
		"session_id": r.sessionID,
		"max_steps":  o.maxSteps,
	}).Warn("Iteration bound reached")
}

// handleParts dispatches every function-call part and buffers every text
// part. It reports whether any function call occurred this iteration.
func (o *Orchestrator) handleParts(ctx context.Context, r *run, resp *gemini.GenerateResponse) bool {
	functionCalled := false
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.FunctionCall != nil {
			functionCalled = true
			o.dispatchCall(ctx, r, *part.FunctionCall)
		}
		if part.Text != "" {
			r.finalAnswer.WriteString(part.Text)
		}
	}
	return functionCalled
}

// dispatchCall executes one tool call and persists the call/response turn
// pair. Mid-loop history writes are fail-open: logged and survived, with the
// half-written pair logged distinctly so the gap is traceable.
func (o *Orchestrator) dispatchCall(ctx context.Context, r *run, call gemini.FunctionCall) {
	result := o.dispatcher.Dispatch(r.rc, call.Name, call.Args)
	r.ledger.RecordTool(call.Name)

	if result.Status == tools.StatusError {
		o.trail.Record(ctx, r.rc, r.sessionID, audit.ActionToolFailed, models.JSONB{
			"tool":    call.Name,
			"message": result.Message,
		})
	}

	callJSON, err := json.Marshal(call)
	if err != nil {
		o.logger.WithError(err).WithField("tool", call.Name).Error("Encoding function call failed")
		return
	}
	respJSON, err := json.Marshal(gemini.FunctionResponse{
		Name:     call.Name,
		Response: result.AsMap(),
	})
	if err != nil {
		o.logger.WithError(err).WithField("tool", call.Name).Error("Encoding function response failed")
		return
	}

	if err := o.history.Append(ctx, r.sessionID, r.userID, models.SenderFunctionCall, string(callJSON)); err != nil {
		o.logger.WithError(err).WithField("tool", call.Name).Error("Persisting function call failed")
		return
	}
	if err := o.history.Append(ctx, r.sessionID, r.userID, models.SenderFunctionResponse, string(respJSON)); err != nil {
		// The call turn is already written; log this gap distinctly.
		o.logger.WithError(err).WithField("tool", call.Name).Error("Function call persisted without its response")
	}
}

// finalize persists the answer, flushes telemetry and emits the completion
// audit event, regardless of which terminal state the loop reached.
func (o *Orchestrator) finalize(ctx context.Context, r *run) *Result {
	answer := r.finalAnswer.String()
	if answer != "" {
		if err := o.history.Append(ctx, r.sessionID, r.userID, models.SenderAI, answer); err != nil {
			o.logger.WithError(err).Error("Persisting answer failed")
		}
	}

	toolsInvoked := r.ledger.ToolsInvoked
	o.flushTelemetry(r, answer)

	elapsed := time.Duration(0)
	if !r.start.IsZero() {
		elapsed = time.Since(r.start)
	}
	o.trail.Record(ctx, r.rc, r.sessionID, audit.ActionChatCompleted, models.JSONB{
		"state":      string(r.state),
		"iterations": r.iterations,
		"tools":      toolsInvoked,
		"elapsed_ms": elapsed.Milliseconds(),
	})

	cartCount := 0
	if count, err := o.cart.Count(r.rc.Identifier()); err == nil {
		cartCount = count
	}

	result := &Result{
		Success:   r.state == StateCompleted || answer != "",
		Message:   answer,
		CartCount: cartCount,
		Metadata:  Metadata{Iterations: r.iterations},
	}
	if result.Message == "" {
		result.Message = fallbackMessage
	}
	return result
}

func (o *Orchestrator) flushTelemetry(r *run, answer string) {
	report := telemetry.Report{
		ConversationID: r.sessionID,
		InteractionID:  uuid.New().String(),
		UserContext: map[string]interface{}{
			"device": telemetry.DeviceFromUserAgent(r.rc.UserAgent),
			"ip":     r.rc.ClientIP,
		},
		History: []telemetry.HistoryEntry{
			{Role: "user", Content: r.message},
			{Role: "assistant", Content: answer},
		},
		TotalCost: r.ledger.Cost(),
		Tokens: telemetry.Tokens{
			Input:     r.ledger.InputTokens,
			Output:    r.ledger.OutputTokens,
			Total:     r.ledger.TotalTokens(),
			Breakdown: r.ledger.Breakdown,
		},
	}
	if r.rc.Authenticated() {
		report.UserID = r.rc.UserID
	}

	o.reporter.Send(report)
	r.ledger.Reset()
}
