package engine

import (
	"context"
	"fmt"

	"github.com/viant/approvalflow/model"
	"github.com/viant/approvalflow/service/directory"
	"github.com/viant/approvalflow/tracing"
)

// Recovery describes an administrative resolution of a halted request;
// exactly one of AssignTo and ReRun must be set
type Recovery struct {
	// AssignTo forces a single assignee on the halted step
	AssignTo string
	// ReRun re-resolves assignees of the halted step
	ReRun   bool
	Comment string
}

// Outcome is a recovery result
type Outcome struct {
	Request *model.Request `json:"request"`
	// Halted is true when the recovery committed but the request halted again
	Halted bool `json:"halted"`
}

// Recover resolves a PENDING_ASSIGNMENT request
func (s *Service) Recover(ctx context.Context, requestID, adminID string, recovery Recovery) (ret *Outcome, err error) {
	ctx, span := tracing.StartSpan(ctx, "approvalflow.Recover")
	span.WithAttributes(map[string]string{"request.id": requestID, "admin.id": adminID})
	defer func() { tracing.EndSpan(span, err) }()
	if adminID == "" {
		return nil, fmt.Errorf("%w: admin is required", ErrValidation)
	}
	if (recovery.AssignTo == "") == !recovery.ReRun {
		return nil, fmt.Errorf("%w: recovery requires either an assignee or a re-run", ErrInvalidAction)
	}
	if purger, ok := s.directory.(directory.Purger); ok && recovery.ReRun {
		purger.Purge()
	}
	t, from, err := s.mutate(ctx, requestID, func(ctx context.Context, t *transition, definition *model.Definition) error {
		req := t.request
		if req.Status != model.StatusPendingAssignment {
			return fmt.Errorf("%w: request %v is %v", ErrInvalidState, req.ID, req.Status)
		}
		idx := req.CurrentStepIndex
		if recovery.ReRun {
			t.record(model.ActionAdminRerun, idx, adminID, recovery.Comment)
			return s.advance(ctx, t, definition, idx-1)
		}
		t.record(model.ActionAdminForceAssign, idx, adminID, recoveryComment(recovery))
		req.CurrentAssignees = []string{recovery.AssignTo}
		req.Status = model.StatusInProgress
		req.EnterStep(idx, req.CurrentAssignees)
		t.topics = append(t.topics, model.TopicStepAssigned)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.committed(ctx, t, from)
	req := t.request.Clone()
	return &Outcome{Request: req, Halted: req.Status == model.StatusPendingAssignment}, nil
}

func recoveryComment(recovery Recovery) string {
	if recovery.Comment != "" {
		return recovery.Comment
	}
	return "assigned to " + recovery.AssignTo
}
