package tools

import (
	"encoding/json"
	"fmt"
)

// Status tags every tool result so the model can branch on the outcome.
type Status string

const (
	StatusSuccess       Status = "success"
	StatusError         Status = "error"
	StatusNotFound      Status = "not_found"
	StatusProposalReady Status = "proposal_ready"
)

// Result is the structured, serializable outcome of one tool invocation.
// Human-facing language stays in the model layer; Message carries only short
// status text.
type Result struct {
	Status  Status                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

func Success(message string, data map[string]interface{}) *Result {
	return &Result{Status: StatusSuccess, Message: message, Data: data}
}

func Errorf(format string, args ...interface{}) *Result {
	return &Result{Status: StatusError, Message: fmt.Sprintf(format, args...)}
}

func NotFound(message string) *Result {
	return &Result{Status: StatusNotFound, Message: message}
}

// AsMap renders the result as the function-response payload handed back to
// the model.
func (r *Result) AsMap() map[string]interface{} {
	out := map[string]interface{}{"status": string(r.Status)}
	if r.Message != "" {
		out["message"] = r.Message
	}
	for k, v := range r.Data {
		out[k] = v
	}
	return out
}

// Serialize renders the result as JSON for caching and history persistence.
func (r *Result) Serialize() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encoding tool result: %w", err)
	}
	return string(data), nil
}

// ExecutionError is the typed failure for tool dispatch. It never escapes the
// dispatcher as a crash; it is converted into an error Result the model can
// react to.
type ExecutionError struct {
	Tool string
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("tool %s: %v", e.Tool, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }
