// Package request defines request persistence. Implementations live in the
// memory, fs and sql sub packages.
package request

import (
	"context"
	"fmt"

	"github.com/viant/approvalflow/model"
	"github.com/viant/approvalflow/service/dao"
	"github.com/viant/approvalflow/service/dao/audit"
)

// Store persists requests together with their audit actions. A request state
// change and the actions explaining it are committed as one unit.
type Store interface {
	// Load returns the request with its History
	Load(ctx context.Context, id string) (*model.Request, error)

	// Create stores a new request with Revision 1, or fails with dao.ErrDuplicate
	Create(ctx context.Context, request *model.Request, actions ...*model.Action) error

	// Save stores the request if the stored revision equals request.Revision,
	// otherwise it fails with dao.ErrConflict; on success request.Revision is
	// incremented
	Save(ctx context.Context, request *model.Request, actions ...*model.Action) error

	// List returns requests matching criteria parameters ordered by creation
	// time; History is not guaranteed to be populated
	List(ctx context.Context, parameters ...*dao.Parameter) ([]*model.Request, error)

	audit.Sink
}

// Validate checks that a request with its actions can be persisted
func Validate(request *model.Request, actions []*model.Action) error {
	if request == nil {
		return dao.ErrNilEntity
	}
	if request.ID == "" {
		return dao.ErrInvalidID
	}
	for _, action := range actions {
		if err := audit.Validate(action); err != nil {
			return err
		}
		if action.RequestID != request.ID {
			return fmt.Errorf("action %s belongs to request %s, not %s", action.ID, action.RequestID, request.ID)
		}
	}
	return nil
}

// Merge appends actions missing from history, matched by Seq
func Merge(history []*model.Action, actions []*model.Action) []*model.Action {
	seen := make(map[int]bool, len(history))
	for _, action := range history {
		seen[action.Seq] = true
	}
	for _, action := range actions {
		if seen[action.Seq] {
			continue
		}
		seen[action.Seq] = true
		history = append(history, action)
	}
	return history
}
