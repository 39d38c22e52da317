package approvalflow_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/approvalflow"
	"github.com/viant/approvalflow/model"
	"go.uber.org/zap"
)

const workflowsYAML = `
id: expense
name: Expense claim
formSchema:
  - key: amount
    type: number
    required: true
steps:
  - stageName: Manager
    approverType: MANAGER_OF_INITIATOR
  - stageName: Finance
    approverType: ROLE
    roleIds: [finance]
    condition: amount > 1000
---
id: legal
name: Legal review
steps:
  - approverType: ROLE
    roleIds: [legal]
`

const usersYAML = `
- id: alice
  roles: [employee]
  reportingManagerId: bob
- id: bob
  role: manager
- id: carol
  roles: [finance]
`

func upload(t *testing.T, fs afs.Service, URL, content string) {
	t.Helper()
	require.NoError(t, fs.Upload(context.Background(), URL, file.DefaultFileOsMode, strings.NewReader(content)))
}

func TestService(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	upload(t, fs, "mem://localhost/approvalflow/workflows/expense.yaml", workflowsYAML)
	upload(t, fs, "mem://localhost/approvalflow/users.yaml", usersYAML)
	redisServer := miniredis.RunT(t)

	testCases := []struct {
		description string
		mutate      func(c *approvalflow.Config)
		options     []approvalflow.Option
	}{
		{description: "memory", mutate: func(c *approvalflow.Config) {}},
		{
			description: "fs store with guarded cached directory",
			mutate: func(c *approvalflow.Config) {
				c.Store.Type = approvalflow.StoreFS
				c.Store.URL = "mem://localhost/approvalflow/requests"
				c.Directory.CacheSize = 16
				c.Directory.BreakerFailures = 3
			},
		},
		{
			description: "redis lock",
			mutate: func(c *approvalflow.Config) {
				c.Lock.Type = approvalflow.LockRedis
				c.Lock.Addr = redisServer.Addr()
				c.Lock.Wait = time.Second
			},
			options: []approvalflow.Option{approvalflow.WithRedis(redis.NewClient(&redis.Options{Addr: redisServer.Addr()}))},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			config := approvalflow.DefaultConfig()
			config.Workflows.URL = "mem://localhost/approvalflow/workflows"
			config.Directory.URL = "mem://localhost/approvalflow/users.yaml"
			config.Metrics.Enabled = true
			config.Events.Enabled = true
			testCase.mutate(config)
			options := append([]approvalflow.Option{
				approvalflow.WithFS(fs),
				approvalflow.WithLogger(zap.NewNop()),
				approvalflow.WithRegisterer(prometheus.NewRegistry()),
			}, testCase.options...)
			srv, err := approvalflow.New(ctx, config, options...)
			require.NoError(t, err)
			defer func() { assert.NoError(t, srv.Close(ctx)) }()

			definitions, err := srv.Workflows().List(ctx)
			require.NoError(t, err)
			require.Len(t, definitions, 2)

			engine := srv.Engine()
			req, err := engine.CreateRequest(ctx, "expense", map[string]interface{}{"amount": 1500}, "alice")
			require.NoError(t, err)
			assert.Equal(t, []string{"bob"}, req.CurrentAssignees)

			req, err = engine.Act(ctx, req.ID, "bob", model.ActionApprove, "")
			require.NoError(t, err)
			assert.Equal(t, []string{"carol"}, req.CurrentAssignees)

			inbox, err := engine.PendingFor(ctx, "carol")
			require.NoError(t, err)
			require.Len(t, inbox, 1)
			assert.Equal(t, req.ID, inbox[0].ID)

			req, err = engine.Act(ctx, req.ID, "carol", model.ActionApprove, "")
			require.NoError(t, err)
			assert.Equal(t, model.StatusApproved, req.Status)

			history, err := engine.History(ctx, req.ID)
			require.NoError(t, err)
			assert.Len(t, history, 3)
			assert.Equal(t, 4, srv.Events().Size())
		})
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	config := approvalflow.DefaultConfig()
	config.Store.Type = "bolt"
	_, err := approvalflow.New(context.Background(), config)
	assert.Error(t, err)
}
