package sql

// Schema creates the request and audit tables
const Schema = `
CREATE TABLE IF NOT EXISTS approval_requests (
	id                  TEXT PRIMARY KEY,
	workflow_id         TEXT NOT NULL,
	workflow_version    INT NOT NULL,
	initiator_id        TEXT NOT NULL,
	form_data           JSONB NOT NULL DEFAULT '{}',
	status              TEXT NOT NULL,
	current_step_index  INT NOT NULL,
	current_assignees   TEXT[] NOT NULL DEFAULT '{}',
	step_approvals      JSONB NOT NULL DEFAULT '[]',
	previous_request_id TEXT NOT NULL DEFAULT '',
	revision            INT NOT NULL,
	created_at          TIMESTAMPTZ NOT NULL,
	updated_at          TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS approval_requests_status_idx ON approval_requests(status);
CREATE INDEX IF NOT EXISTS approval_requests_initiator_idx ON approval_requests(initiator_id);
CREATE INDEX IF NOT EXISTS approval_requests_assignees_idx ON approval_requests USING GIN(current_assignees);
CREATE INDEX IF NOT EXISTS approval_requests_previous_idx ON approval_requests(previous_request_id);

CREATE TABLE IF NOT EXISTS approval_actions (
	id          TEXT PRIMARY KEY,
	request_id  TEXT NOT NULL REFERENCES approval_requests(id),
	seq         INT NOT NULL,
	step_index  INT NOT NULL,
	action      TEXT NOT NULL,
	by_user_id  TEXT NOT NULL DEFAULT '',
	comment     TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL,
	UNIQUE (request_id, seq)
);
`
