package queue

import "encoding/json"

// BalanceRecomputeMessage 异步余额重算请求
type BalanceRecomputeMessage struct {
	MessageID   string `json:"message_id"` // 消息唯一ID，用于幂等性检查
	RunID       string `json:"run_id"`
	Year        int    `json:"year"`
	EmployeeID  *int64 `json:"employee_id,omitempty"`
	ActiveOnly  bool   `json:"active_only"`
	Reason      string `json:"reason"` // manual / leave_event / schedule
	RequestedBy int64  `json:"requested_by,omitempty"`
	RequestedAt string `json:"requested_at"`
}

// StateChangedPayload 年假 / 许可状态变化事件内容
type StateChangedPayload struct {
	Kind       string `json:"kind"` // vacation / permission
	From       string `json:"from"`
	To         string `json:"to"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Years      []int  `json:"years"`
	RequestID  int64  `json:"request_id"`
	EmployeeID int64  `json:"employee_id"`
	ActorID    int64  `json:"actor_id"`
}

// EventMessage 事件总线消息
type EventMessage struct {
	MessageID  string          `json:"message_id"`
	Payload    json.RawMessage `json:"payload"`
	EventKey   string          `json:"event_key"`
	EventType  string          `json:"event_type"`
	OccurredAt string          `json:"occurred_at"`
}

const (
	EventLeaveStateChanged      = "leave.state_changed"
	EventPermissionStateChanged = "permission.state_changed"

	ReasonManual     = "manual"
	ReasonLeaveEvent = "leave_event"
	ReasonSchedule   = "schedule"
)
