package model

import "time"

// Standard event topics
const (
	TopicRequestCreated   = "request.created"
	TopicStepAssigned     = "step.assigned"
	TopicApprovalRecorded = "approval.recorded"
	TopicRequestHalted    = "request.halted"
	TopicRequestApproved  = "request.approved"
	TopicRequestRejected  = "request.rejected"
	TopicRequestReturned  = "request.returned"
)

// Event describes a committed request transition
type Event struct {
	Topic     string    `json:"topic"`
	RequestID string    `json:"requestId"`
	Status    Status    `json:"status"`
	StepIndex int       `json:"stepIndex"`
	Assignees []string  `json:"assignees,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// TopicOf returns the topic describing the request's current state
func TopicOf(request *Request) string {
	switch request.Status {
	case StatusApproved:
		return TopicRequestApproved
	case StatusRejected:
		return TopicRequestRejected
	case StatusReturned:
		return TopicRequestReturned
	case StatusPendingAssignment:
		return TopicRequestHalted
	}
	return TopicStepAssigned
}
