// Package sql provides a Postgres request store. A request update and the
// audit actions explaining it are written in one transaction, guarded by the
// stored revision.
package sql

import (
	"context"
	dbsql "database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/viant/approvalflow/model"
	"github.com/viant/approvalflow/service/dao"
	"github.com/viant/approvalflow/service/dao/audit"
	"github.com/viant/approvalflow/service/dao/criteria"
	"github.com/viant/approvalflow/service/dao/request"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

var (
	insertRequestSQL = `INSERT INTO approval_requests (` + requestColumns + `) VALUES (
	:id, :workflow_id, :workflow_version, :initiator_id, :form_data, :status, :current_step_index,
	:current_assignees, :step_approvals, :previous_request_id, :revision, :created_at, :updated_at)`

	updateRequestSQL = `UPDATE approval_requests SET
	form_data = :form_data, status = :status, current_step_index = :current_step_index,
	current_assignees = :current_assignees, step_approvals = :step_approvals,
	updated_at = :updated_at, revision = revision + 1
	WHERE id = :id AND revision = :revision`

	insertActionSQL = `INSERT INTO approval_actions (` + actionColumns + `) VALUES (
	:id, :request_id, :seq, :step_index, :action, :by_user_id, :comment, :created_at)
	ON CONFLICT DO NOTHING`

	selectRequestSQL  = `SELECT ` + requestColumns + ` FROM approval_requests`
	selectActionsSQL  = `SELECT ` + actionColumns + ` FROM approval_actions WHERE request_id = $1 ORDER BY seq`
	selectRevisionSQL = `SELECT revision FROM approval_requests WHERE id = $1`
)

// Service implements a Postgres request storage
type Service struct {
	db *sqlx.DB
}

var _ request.Store = (*Service)(nil)

// Migrate creates the schema if needed
func (s *Service) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, Schema)
	return err
}

// Create inserts a new request with its actions
func (s *Service) Create(ctx context.Context, req *model.Request, actions ...*model.Action) error {
	if err := request.Validate(req, actions); err != nil {
		return err
	}
	record, err := newRequestRecord(req)
	if err != nil {
		return err
	}
	record.Revision = 1
	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx, insertRequestSQL, record); err != nil {
			if isViolation(err, uniqueViolation) {
				return fmt.Errorf("request %s: %w", req.ID, dao.ErrDuplicate)
			}
			return fmt.Errorf("failed to insert request %s: %w", req.ID, err)
		}
		return insertActions(ctx, tx, actions)
	})
	if err != nil {
		return err
	}
	req.Revision = record.Revision
	req.History = request.Merge(req.History, actions)
	return nil
}

// Save updates the request when its revision is current
func (s *Service) Save(ctx context.Context, req *model.Request, actions ...*model.Action) error {
	if err := request.Validate(req, actions); err != nil {
		return err
	}
	record, err := newRequestRecord(req)
	if err != nil {
		return err
	}
	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := insertActions(ctx, tx, actions); err != nil {
			return err
		}
		result, err := tx.NamedExecContext(ctx, updateRequestSQL, record)
		if err != nil {
			return fmt.Errorf("failed to update request %s: %w", req.ID, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 1 {
			return nil
		}
		var revision int
		if err := tx.GetContext(ctx, &revision, selectRevisionSQL, req.ID); err != nil {
			if errors.Is(err, dbsql.ErrNoRows) {
				return fmt.Errorf("request %s: %w", req.ID, dao.ErrNotFound)
			}
			return err
		}
		return fmt.Errorf("request %s at revision %d, got %d: %w", req.ID, revision, req.Revision, dao.ErrConflict)
	})
	if err != nil {
		return err
	}
	req.Revision++
	req.History = request.Merge(req.History, actions)
	return nil
}

func insertActions(ctx context.Context, tx *sqlx.Tx, actions []*model.Action) error {
	for _, action := range actions {
		if _, err := tx.NamedExecContext(ctx, insertActionSQL, newActionRecord(action)); err != nil {
			if isViolation(err, foreignKeyViolation) {
				return fmt.Errorf("request %s: %w", action.RequestID, dao.ErrNotFound)
			}
			return fmt.Errorf("failed to insert action %s: %w", action.ID, err)
		}
	}
	return nil
}

func (s *Service) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Load returns the request with its history
func (s *Service) Load(ctx context.Context, id string) (*model.Request, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	record := &requestRecord{}
	if err := s.db.GetContext(ctx, record, selectRequestSQL+` WHERE id = $1`, id); err != nil {
		if errors.Is(err, dbsql.ErrNoRows) {
			return nil, fmt.Errorf("request %s: %w", id, dao.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load request %s: %w", id, err)
	}
	ret, err := record.request()
	if err != nil {
		return nil, err
	}
	if ret.History, err = s.actions(ctx, id); err != nil {
		return nil, err
	}
	return ret, nil
}

// List returns requests matching parameters without history
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*model.Request, error) {
	var where []string
	var args []interface{}
	for _, parameter := range parameters {
		if parameter == nil {
			continue
		}
		var column string
		switch parameter.Name {
		case criteria.Status:
			column = "status = ANY($%d)"
		case criteria.Initiator:
			column = "initiator_id = ANY($%d)"
		case criteria.Workflow:
			column = "workflow_id = ANY($%d)"
		case criteria.Assignee:
			column = "current_assignees && $%d"
		case criteria.Previous:
			column = "previous_request_id = ANY($%d)"
		default:
			continue
		}
		args = append(args, pq.Array(parameter.Values()))
		where = append(where, fmt.Sprintf(column, len(args)))
	}
	query := selectRequestSQL
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at, id`
	var records []*requestRecord
	if err := s.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	ret := make([]*model.Request, 0, len(records))
	for _, record := range records {
		req, err := record.request()
		if err != nil {
			return nil, err
		}
		ret = append(ret, req)
	}
	return ret, nil
}

// Append inserts an audit action of an existing request
func (s *Service) Append(ctx context.Context, action *model.Action) error {
	if err := audit.Validate(action); err != nil {
		return err
	}
	if _, err := s.db.NamedExecContext(ctx, insertActionSQL, newActionRecord(action)); err != nil {
		if isViolation(err, foreignKeyViolation) {
			return fmt.Errorf("request %s: %w", action.RequestID, dao.ErrNotFound)
		}
		return fmt.Errorf("failed to insert action %s: %w", action.ID, err)
	}
	return nil
}

// ListByRequest returns request actions ordered by Seq
func (s *Service) ListByRequest(ctx context.Context, requestID string) ([]*model.Action, error) {
	actions, err := s.actions(ctx, requestID)
	if err != nil || len(actions) > 0 {
		return actions, err
	}
	var revision int
	if err := s.db.GetContext(ctx, &revision, selectRevisionSQL, requestID); err != nil {
		if errors.Is(err, dbsql.ErrNoRows) {
			return nil, fmt.Errorf("request %s: %w", requestID, dao.ErrNotFound)
		}
		return nil, err
	}
	return actions, nil
}

func (s *Service) actions(ctx context.Context, requestID string) ([]*model.Action, error) {
	var records []*actionRecord
	if err := s.db.SelectContext(ctx, &records, selectActionsSQL, requestID); err != nil {
		return nil, fmt.Errorf("failed to load actions of %s: %w", requestID, err)
	}
	ret := make([]*model.Action, len(records))
	for i, record := range records {
		ret[i] = record.action()
	}
	return ret, nil
}

func isViolation(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}

// New creates a store over an open database
func New(db *sqlx.DB) *Service {
	return &Service{db: db}
}

// Open connects to Postgres with the supplied DSN
func Open(ctx context.Context, dsn string) (*Service, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect request store: %w", err)
	}
	return New(db), nil
}

// DB returns the underlying database
func (s *Service) DB() *sqlx.DB {
	return s.db
}
