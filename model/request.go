package model

import "time"

// Status represents a request status
type Status string

const (
	StatusInProgress        Status = "IN_PROGRESS"
	StatusPendingAssignment Status = "PENDING_ASSIGNMENT"
	StatusReturned          Status = "RETURNED"
	StatusApproved          Status = "APPROVED"
	StatusRejected          Status = "REJECTED"
)

// IsDecided returns true for APPROVED and REJECTED
func (s Status) IsDecided() bool {
	return s == StatusApproved || s == StatusRejected
}

// IsTerminal returns true if the engine never transitions out of the status
func (s Status) IsTerminal() bool {
	return s.IsDecided() || s == StatusReturned
}

// StepApproval records approvals collected for one step
type StepApproval struct {
	StepIndex int `json:"stepIndex"`
	// Assignees is the actor set captured when the step was entered
	Assignees  []string `json:"assignees"`
	ApprovedBy []string `json:"approvedBy,omitempty"`
}

// Approve records userID approval, returns false if it was already recorded
func (a *StepApproval) Approve(userID string) bool {
	for _, candidate := range a.ApprovedBy {
		if candidate == userID {
			return false
		}
	}
	a.ApprovedBy = append(a.ApprovedBy, userID)
	return true
}

// Satisfied returns true if the quorum for mode was reached
func (a *StepApproval) Satisfied(mode Mode) bool {
	if mode != ModeAllRequired {
		return len(a.ApprovedBy) > 0
	}
	approved := make(map[string]bool, len(a.ApprovedBy))
	for _, id := range a.ApprovedBy {
		approved[id] = true
	}
	for _, id := range a.Assignees {
		if !approved[id] {
			return false
		}
	}
	return len(a.ApprovedBy) > 0
}

// Request represents a workflow request instance
type Request struct {
	ID string `json:"id"`
	// WorkflowID and WorkflowVersion pin the definition for the request lifetime
	WorkflowID       string                 `json:"workflowId"`
	WorkflowVersion  int                    `json:"workflowVersion"`
	InitiatorID      string                 `json:"initiatorUserId"`
	FormData         map[string]interface{} `json:"formData,omitempty"`
	Status           Status                 `json:"status"`
	CurrentStepIndex int                    `json:"currentStepIndex"`
	CurrentAssignees []string               `json:"currentAssignees"`
	StepApprovals    []*StepApproval        `json:"stepApprovals,omitempty"`
	History          []*Action              `json:"history,omitempty"`
	// PreviousRequestID links a resubmission to the returned request
	PreviousRequestID string `json:"previousRequestId,omitempty"`
	// Revision is incremented on every committed save
	Revision  int       `json:"revision"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsAssignee returns true if userID may act on the current step
func (r *Request) IsAssignee(userID string) bool {
	for _, candidate := range r.CurrentAssignees {
		if candidate == userID {
			return true
		}
	}
	return false
}

// StepApproval returns approval record for the step index or nil
func (r *Request) StepApproval(stepIndex int) *StepApproval {
	for _, approval := range r.StepApprovals {
		if approval.StepIndex == stepIndex {
			return approval
		}
	}
	return nil
}

// EnterStep resets the approval record of a step with the captured assignees
func (r *Request) EnterStep(stepIndex int, assignees []string) *StepApproval {
	approval := &StepApproval{StepIndex: stepIndex, Assignees: append([]string{}, assignees...)}
	for i, candidate := range r.StepApprovals {
		if candidate.StepIndex == stepIndex {
			r.StepApprovals[i] = approval
			return approval
		}
	}
	r.StepApprovals = append(r.StepApprovals, approval)
	return approval
}

// NextSeq returns the sequence number for the next audit action
func (r *Request) NextSeq() int {
	if len(r.History) == 0 {
		return 1
	}
	return r.History[len(r.History)-1].Seq + 1
}

// Clone returns a copy safe to mutate; audit actions are shared as they are immutable
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	ret := *r
	if r.FormData != nil {
		ret.FormData = make(map[string]interface{}, len(r.FormData))
		for k, v := range r.FormData {
			ret.FormData[k] = v
		}
	}
	ret.CurrentAssignees = append([]string{}, r.CurrentAssignees...)
	ret.StepApprovals = make([]*StepApproval, len(r.StepApprovals))
	for i, approval := range r.StepApprovals {
		clone := *approval
		clone.Assignees = append([]string{}, approval.Assignees...)
		clone.ApprovedBy = append([]string(nil), approval.ApprovedBy...)
		ret.StepApprovals[i] = &clone
	}
	ret.History = append([]*Action(nil), r.History...)
	return &ret
}
