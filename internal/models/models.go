package models

import "time"

// Outcome values stored in explain_log. Failures store the explain error kind.
const OutcomeOK = "ok"

// ExplainLog is one explain request as recorded in the usage log. It never
// holds the user's text, URL or file contents.
type ExplainLog struct {
	ID           int64     `json:"id"`
	Simplicity   int       `json:"simplicity"`
	Tone         string    `json:"tone"`
	CustomTone   bool      `json:"custom_tone"`
	InputKind    string    `json:"input_kind"`
	FileCount    int       `json:"file_count"`
	Outcome      string    `json:"outcome"`
	ErrorMessage string    `json:"error_message,omitempty"`
	TokensUsed   int       `json:"tokens_used"`
	Model        string    `json:"model,omitempty"`
	DurationMs   int64     `json:"duration_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

type Stats struct {
	TotalRequests     int   `json:"total_requests"`
	Succeeded         int   `json:"succeeded"`
	Failed            int   `json:"failed"`
	Blocked           int   `json:"blocked"`
	URLRequests       int   `json:"url_requests"`
	FileRequests      int   `json:"file_requests"`
	CustomToneUsed    int   `json:"custom_tone_used"`
	TotalTokensUsed   int   `json:"total_tokens_used"`
	AvgDurationMs     int64 `json:"avg_duration_ms"`
	DatabaseSizeBytes int64 `json:"database_size_bytes"`
}
