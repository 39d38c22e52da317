// Package sql provides a Postgres backed directory.
package sql

import (
	"context"
	dbsql "database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/viant/approvalflow/model"
	"github.com/viant/approvalflow/service/dao"
	"github.com/viant/approvalflow/service/directory"
)

// Schema creates the directory tables. The role column carries the legacy
// single role; user_roles carries the current many-to-many membership.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id                   TEXT PRIMARY KEY,
	name                 TEXT NOT NULL DEFAULT '',
	email                TEXT NOT NULL DEFAULT '',
	is_active            BOOLEAN NOT NULL DEFAULT TRUE,
	role                 TEXT NOT NULL DEFAULT '',
	reporting_manager_id TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS user_roles (
	user_id TEXT NOT NULL REFERENCES users(id),
	role_id TEXT NOT NULL,
	PRIMARY KEY (user_id, role_id)
);
`

const (
	selectMembersSQL = `SELECT u.id FROM users u
	WHERE u.is_active AND (u.role = ANY($1)
		OR EXISTS (SELECT 1 FROM user_roles r WHERE r.user_id = u.id AND r.role_id = ANY($1)))
	ORDER BY u.id`
	selectUserSQL  = `SELECT id, name, email, is_active, role, reporting_manager_id FROM users WHERE id = $1`
	selectRolesSQL = `SELECT role_id FROM user_roles WHERE user_id = $1 ORDER BY role_id`
)

type userRecord struct {
	ID                 string `db:"id"`
	Name               string `db:"name"`
	Email              string `db:"email"`
	IsActive           bool   `db:"is_active"`
	Role               string `db:"role"`
	ReportingManagerID string `db:"reporting_manager_id"`
}

// Service implements directory.Directory with sqlx
type Service struct {
	db *sqlx.DB
}

var _ directory.Directory = (*Service)(nil)

// FindActiveUsersByRoles returns ids of active users holding any of roleIDs
func (s *Service) FindActiveUsersByRoles(ctx context.Context, roleIDs []string) ([]string, error) {
	ret := []string{}
	if err := s.db.SelectContext(ctx, &ret, selectMembersSQL, pq.Array(roleIDs)); err != nil {
		return nil, fmt.Errorf("failed to find role members: %w", err)
	}
	return ret, nil
}

// GetUser returns a normalised user
func (s *Service) GetUser(ctx context.Context, id string) (*model.User, error) {
	record := &userRecord{}
	if err := s.db.GetContext(ctx, record, selectUserSQL, id); err != nil {
		if errors.Is(err, dbsql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, dao.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load user %s: %w", id, err)
	}
	var roles []string
	if err := s.db.SelectContext(ctx, &roles, selectRolesSQL, id); err != nil {
		return nil, fmt.Errorf("failed to load roles of %s: %w", id, err)
	}
	active := record.IsActive
	user := &model.User{
		ID:                 record.ID,
		Name:               record.Name,
		Email:              record.Email,
		Active:             &active,
		RoleIDs:            roles,
		LegacyRole:         record.Role,
		ReportingManagerID: record.ReportingManagerID,
	}
	user.Normalize()
	return user, nil
}

// New creates a directory over an open database
func New(db *sqlx.DB) *Service {
	return &Service{db: db}
}
