// Package audit defines the write-once audit trail contract.
package audit

import (
	"context"
	"fmt"

	"github.com/viant/approvalflow/model"
	"github.com/viant/approvalflow/service/dao"
)

// Sink stores audit actions. Append is idempotent per (RequestID, Seq).
type Sink interface {
	Append(ctx context.Context, action *model.Action) error
	// ListByRequest returns request actions ordered by Seq
	ListByRequest(ctx context.Context, requestID string) ([]*model.Action, error)
}

// Validate checks that an action can be persisted
func Validate(action *model.Action) error {
	if action == nil {
		return dao.ErrNilEntity
	}
	if action.ID == "" || action.RequestID == "" {
		return dao.ErrInvalidID
	}
	if action.Seq < 1 {
		return fmt.Errorf("action %s: invalid seq %d", action.ID, action.Seq)
	}
	return nil
}
