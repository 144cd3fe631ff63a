package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sender kinds for conversation turns. Turns are append-only; a
// function_response always follows its function_call in the same session.
const (
	SenderUser             = "user"
	SenderAI               = "ai"
	SenderFunctionCall     = "function_call"
	SenderFunctionResponse = "function_response"
)

// ConversationTurn is one persisted unit of conversation. Content of
// function_call/function_response turns is serialized JSON, stored opaque and
// rehydrated by the orchestrator when replaying history to the model.
type ConversationTurn struct {
	ID        uuid.UUID `json:"id" db:"id"`
	SessionID string    `json:"session_id" db:"session_id"`
	UserID    *int64    `json:"user_id,omitempty" db:"user_id"`
	Sender    string    `json:"sender" db:"sender"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AuditLog represents an audit log entry
type AuditLog struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    *int64    `json:"user_id" db:"user_id"`
	SessionID string    `json:"session_id" db:"session_id"`
	Action    string    `json:"action" db:"action"`
	Details   JSONB     `json:"details" db:"details"`
	IPAddress string    `json:"ip_address" db:"ip_address"`
	UserAgent string    `json:"user_agent" db:"user_agent"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// RequestContext carries the caller's identity through a request. It is built
// once at the HTTP boundary and threaded explicitly; nothing reads ambient
// request state.
type RequestContext struct {
	UserID    int64  `json:"user_id"` // 0 for anonymous visitors
	ClientIP  string `json:"client_ip"`
	UserAgent string `json:"user_agent"`
}

// Authenticated reports whether the request belongs to a logged-in user.
func (rc RequestContext) Authenticated() bool {
	return rc.UserID > 0
}

// Identifier returns the rate-limit/ownership identity: the user id for
// authenticated callers, the client IP otherwise.
func (rc RequestContext) Identifier() string {
	if rc.Authenticated() {
		return fmt.Sprintf("user:%d", rc.UserID)
	}
	return "ip:" + rc.ClientIP
}

// JSONB type for JSON columns
type JSONB map[string]interface{}

// Value implements driver.Valuer for JSONB
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner for JSONB
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSONB)
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unsupported type for JSONB: %T", value)
	}
	return json.Unmarshal(b, j)
}
