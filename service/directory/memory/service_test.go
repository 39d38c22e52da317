package memory

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/approvalflow/service/dao"
)

const usersYAML = `
- id: alice
  roles: [employee]
  reportingManagerId: bob
- id: bob
  role: manager
- id: carol
  roles: [finance]
- id: dave
  roles: [finance]
  isActive: false
- id: erin
  role: finance
  roles: [audit]
`

func TestService(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	URL := "mem://localhost/directory/users.yaml"
	require.NoError(t, fs.Upload(ctx, URL, file.DefaultFileOsMode, strings.NewReader(usersYAML)))

	srv, err := New()
	require.NoError(t, err)
	require.NoError(t, srv.WithFS(fs).Load(ctx, URL))

	testCases := []struct {
		description string
		roles       []string
		expect      []string
	}{
		{description: "active members only", roles: []string{"finance"}, expect: []string{"carol", "erin"}},
		{description: "legacy role", roles: []string{"manager"}, expect: []string{"bob"}},
		{description: "any of roles", roles: []string{"audit", "employee"}, expect: []string{"alice", "erin"}},
		{description: "empty role", roles: []string{"legal"}, expect: []string{}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			actual, err := srv.FindActiveUsersByRoles(ctx, testCase.roles)
			require.NoError(t, err)
			assert.Equal(t, testCase.expect, actual)
		})
	}

	alice, err := srv.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "bob", alice.ReportingManagerID)
	erin, err := srv.GetUser(ctx, "erin")
	require.NoError(t, err)
	assert.Equal(t, []string{"audit", "finance"}, erin.RoleIDs)
	assert.Empty(t, erin.LegacyRole)

	require.NoError(t, srv.Remove(ctx, "alice"))
	_, err = srv.GetUser(ctx, "alice")
	assert.ErrorIs(t, err, dao.ErrNotFound)
	assert.Error(t, srv.WithFS(fs).Load(ctx, "mem://localhost/directory/missing.yaml"))
}
