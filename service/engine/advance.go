package engine

import (
	"context"
	"fmt"

	"github.com/viant/approvalflow/model"
	"github.com/viant/approvalflow/service/condition"
	"github.com/viant/approvalflow/service/directory"
)

// advance moves the request to the first applicable step after fromIndex.
// Inapplicable steps are skipped silently; a step without assignees halts the
// request in PENDING_ASSIGNMENT; running out of steps approves it.
func (s *Service) advance(ctx context.Context, t *transition, definition *model.Definition, fromIndex int) error {
	req := t.request
	snapshot := directory.NewSnapshot(s.directory)
	for idx := fromIndex + 1; idx < len(definition.Steps); idx++ {
		step := definition.Steps[idx]
		if !condition.IsApplicable(step, req.FormData) {
			continue
		}
		assignees, err := s.resolver.Resolve(ctx, snapshot, step, req.InitiatorID)
		if err != nil {
			return fmt.Errorf("failed to resolve assignees of step %d: %w", idx, err)
		}
		req.CurrentStepIndex = idx
		if len(assignees) == 0 {
			t.record(model.ActionErrorNoAssignees, idx, "", fmt.Sprintf("no assignees resolved for step %d %s", idx, step.StageName))
			req.CurrentAssignees = []string{}
			req.Status = model.StatusPendingAssignment
			t.topics = append(t.topics, model.TopicRequestHalted)
			return nil
		}
		req.CurrentAssignees = assignees
		req.Status = model.StatusInProgress
		req.EnterStep(idx, assignees)
		t.topics = append(t.topics, model.TopicStepAssigned)
		return nil
	}
	req.Status = model.StatusApproved
	req.CurrentAssignees = []string{}
	req.CurrentStepIndex = len(definition.Steps)
	t.topics = append(t.topics, model.TopicRequestApproved)
	return nil
}
