package realtime

import "time"

// EventType identifies a run progress event
type EventType string

const (
	EventRunStarted  EventType = "run_started"
	EventCompanyDone EventType = "company_done"
	EventRunFinished EventType = "run_finished"
)

// Event is one run progress update
// ⭐ SSOT: 실시간 진행 이벤트 구조
type Event struct {
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"`
	Symbol    string    `json:"symbol,omitempty"`
	Status    string    `json:"status,omitempty"` // ok, failure kind, or run error
	TestRMSE  *float64  `json:"test_rmse,omitempty"`
	Done      int       `json:"done"`
	Total     int       `json:"total"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher accepts progress events. Implementations must not block.
type Publisher interface {
	Publish(ev Event)
}
