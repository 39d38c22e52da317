package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/approvalflow"
	"github.com/viant/approvalflow/model"
	"github.com/viant/approvalflow/service/engine"
	"go.uber.org/zap"
)

const workflowYAML = `
id: legal
name: Legal review
formSchema:
  - key: amount
    type: number
steps:
  - approverType: ROLE
    roleIds: [legal]
`

func newTestApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()
	ctx := context.Background()
	fs := afs.New()
	require.NoError(t, fs.Upload(ctx, "mem://localhost/cli/workflows/legal.yaml", file.DefaultFileOsMode, strings.NewReader(workflowYAML)))
	config := approvalflow.DefaultConfig()
	config.Workflows.URL = "mem://localhost/cli/workflows"
	srv, err := approvalflow.New(ctx, config, approvalflow.WithFS(fs), approvalflow.WithLogger(zap.NewNop()))
	require.NoError(t, err)
	out := &bytes.Buffer{}
	ret := newApp(out)
	ret.srv = srv
	return ret, out
}

func run(t *testing.T, a *app, out *bytes.Buffer, target interface{}, args ...string) error {
	t.Helper()
	out.Reset()
	cmd := a.command()
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		return err
	}
	if target != nil {
		require.NoError(t, json.Unmarshal(out.Bytes(), target))
	}
	return nil
}

func TestApp(t *testing.T) {
	a, out := newTestApp(t)

	req := &model.Request{}
	require.NoError(t, run(t, a, out, req, "submit", "legal", "-u", "alice", "-f", "amount=1200"))
	assert.Equal(t, model.StatusPendingAssignment, req.Status)
	assert.EqualValues(t, 1200, req.FormData["amount"])

	var halted []*model.Request
	require.NoError(t, run(t, a, out, &halted, "inbox", "--halted"))
	require.Len(t, halted, 1)

	outcome := &engine.Outcome{}
	require.NoError(t, run(t, a, out, outcome, "recover", req.ID, "-u", "admin", "--assign-to", "xavier"))
	assert.False(t, outcome.Halted)
	assert.Equal(t, []string{"xavier"}, outcome.Request.CurrentAssignees)

	var pending []*model.Request
	require.NoError(t, run(t, a, out, &pending, "inbox", "-u", "xavier"))
	require.Len(t, pending, 1)

	require.NoError(t, run(t, a, out, req, "act", req.ID, "approve", "-u", "xavier", "-m", "ok"))
	assert.Equal(t, model.StatusApproved, req.Status)

	var history []*model.Action
	require.NoError(t, run(t, a, out, &history, "history", req.ID))
	assert.Len(t, history, 4)

	err := run(t, a, out, nil, "act", req.ID, "approve", "-u", "xavier")
	assert.ErrorIs(t, err, engine.ErrInvalidState)

	err = run(t, a, out, nil, "act", req.ID, "escalate", "-u", "xavier")
	assert.Error(t, err)

	err = run(t, a, out, nil, "recover", req.ID, "-u", "admin")
	assert.Error(t, err)
}

func TestParseForm(t *testing.T) {
	testCases := []struct {
		description string
		fields      []string
		expect      map[string]interface{}
		expectErr   bool
	}{
		{description: "typed scalars", fields: []string{"amount=1500", "category=travel", "urgent=true"}, expect: map[string]interface{}{"amount": 1500, "category": "travel", "urgent": true}},
		{description: "empty value", fields: []string{"note="}, expect: map[string]interface{}{"note": ""}},
		{description: "date stays text", fields: []string{"due=2024-03-01"}, expect: map[string]interface{}{"due": "2024-03-01"}},
		{description: "missing separator", fields: []string{"amount"}, expectErr: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			actual, err := parseForm(testCase.fields)
			if testCase.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.expect, actual)
		})
	}
}
