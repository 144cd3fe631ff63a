package telemetry

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const secretHeader = "X-Analytics-Secret"

// HistoryEntry is one user/assistant exchange included in a report.
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Tokens summarizes the run's token usage for the sink.
type Tokens struct {
	Input     int              `json:"input"`
	Output    int              `json:"output"`
	Total     int              `json:"total"`
	Breakdown []BreakdownEntry `json:"breakdown"`
}

// Report is the out-of-band usage document posted to the analytics sink.
type Report struct {
	ConversationID string                 `json:"conversationId"`
	InteractionID  string                 `json:"interactionId"`
	UserID         int64                  `json:"userId,omitempty"`
	UserContext    map[string]interface{} `json:"userContext,omitempty"`
	History        []HistoryEntry         `json:"history"`
	TotalCost      float64                `json:"totalCost"`
	Tokens         Tokens                 `json:"tokens"`
}

// Reporter delivers reports to the analytics endpoint, fire-and-forget.
// Delivery failures are logged and swallowed; reporting never blocks or
// fails the user-facing response.
type Reporter struct {
	endpoint string
	secret   string
	client   *http.Client
	logger   *logrus.Logger
}

func NewReporter(endpoint, secret string, logger *logrus.Logger) *Reporter {
	return &Reporter{
		endpoint: endpoint,
		secret:   secret,
		client:   &http.Client{Timeout: 5 * time.Second},
		logger:   logger,
	}
}

// Send posts the report in the background. A reporter with no configured
// endpoint drops reports silently.
func (r *Reporter) Send(report Report) {
	if r.endpoint == "" {
		return
	}
	go r.deliver(report)
}

func (r *Reporter) deliver(report Report) {
	body, err := json.Marshal(report)
	if err != nil {
		r.logger.WithError(err).Warn("Encoding telemetry report failed")
		return
	}

	req, err := http.NewRequest(http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		r.logger.WithError(err).Warn("Building telemetry request failed")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(secretHeader, r.secret)

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.WithError(err).Warn("Telemetry delivery failed")
		return
	}
	resp.Body.Close()

	if resp.StatusCode >= 300 {
		r.logger.WithField("status", resp.StatusCode).Warn("Telemetry sink rejected report")
	}
}

// DeviceFromUserAgent reduces a raw user agent to a coarse device label for
// the report's user context.
func DeviceFromUserAgent(ua string) string {
	lower := strings.ToLower(ua)
	switch {
	case strings.Contains(lower, "android"):
		return "Mobile (Android)"
	case strings.Contains(lower, "iphone"), strings.Contains(lower, "ipad"):
		return "Mobile (iOS)"
	case strings.Contains(lower, "windows"):
		return "Desktop (Windows)"
	case strings.Contains(lower, "mac os"):
		return "Desktop (macOS)"
	case strings.Contains(lower, "linux"):
		return "Desktop (Linux)"
	case ua == "":
		return "Unknown"
	default:
		return "Other"
	}
}
