package model

import (
	"fmt"
	"strings"
	"time"
)

// ActionType represents an audit action type
type ActionType string

const (
	ActionSubmit           ActionType = "SUBMIT"
	ActionApprove          ActionType = "APPROVE"
	ActionReject           ActionType = "REJECT"
	ActionReturn           ActionType = "RETURN"
	ActionErrorNoAssignees ActionType = "ERROR_NO_ASSIGNEES"
	ActionAdminForceAssign ActionType = "ADMIN_FORCE_ASSIGN"
	ActionAdminRerun       ActionType = "ADMIN_RERUN"
)

// ParseUserAction parses an actor decision; only APPROVE, REJECT and RETURN are accepted
func ParseUserAction(text string) (ActionType, error) {
	switch actionType := ActionType(strings.ToUpper(strings.TrimSpace(text))); actionType {
	case ActionApprove, ActionReject, ActionReturn:
		return actionType, nil
	}
	return "", fmt.Errorf("unsupported action %q", text)
}

// Action represents a write-once audit record
type Action struct {
	ID        string     `json:"id"`
	RequestID string     `json:"requestId"`
	Seq       int        `json:"seq"`
	StepIndex int        `json:"stepIndex"`
	Type      ActionType `json:"action"`
	// ByUserID is empty for system generated entries
	ByUserID  string    `json:"byUserId,omitempty"`
	Comment   string    `json:"comment,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
