package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/studyhub/config"
	"github.com/alem-hub/studyhub/internal/application/command"
	"github.com/alem-hub/studyhub/pkg/logger"
)

func TestBuild_InMemoryBadger(t *testing.T) {
	cfg := config.Default()
	cfg.Store.BadgerInMemory = true
	cfg.Observability.MetricsEnabled = false
	require.NoError(t, cfg.Validate())

	ctx := context.Background()
	comps, err := build(ctx, cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = comps.Close() })

	_, err = comps.app.RegisterUser.Handle(ctx, command.RegisterUserCommand{
		Caller: "alice", Username: "alice", SkillLevel: "beginner",
	})
	require.NoError(t, err)

	st, err := comps.app.PlatformStats.Handle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.TotalUsers)
	assert.Equal(t, uint64(100), st.TotalTokensDistributed)

	status := comps.health.Check(ctx)
	assert.True(t, status.Healthy)
	assert.Contains(t, status.Checks, "store")
}

func TestPostgresConfig_MapsPool(t *testing.T) {
	cfg := config.Default()
	cfg.Store.DatabaseURL = "postgres://u:p@localhost/db"
	cfg.Store.MaxConns = 7

	pc := postgresConfig(cfg)
	assert.Equal(t, cfg.Store.DatabaseURL, pc.URL)
	assert.Equal(t, int32(7), pc.MaxConns)
}
