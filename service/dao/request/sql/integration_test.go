package sql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/viant/approvalflow/service/dao/request"
	"github.com/viant/approvalflow/service/dao/request/storetest"
)

func TestService_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	ctx := context.Background()
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("approvalflow"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2)),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}()
	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	srv, err := Open(ctx, connStr)
	require.NoError(t, err)
	defer srv.DB().Close()
	require.NoError(t, srv.Migrate(ctx))

	storetest.Run(t, func(t *testing.T) request.Store {
		_, err := srv.DB().ExecContext(ctx, "TRUNCATE approval_actions, approval_requests")
		require.NoError(t, err)
		return srv
	})
}
