package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firstcare-health/member-registry/internal/config"
	"github.com/firstcare-health/member-registry/internal/registry"
)

func TestSeedCreatesSampleOnce(t *testing.T) {
	ctx := context.Background()
	store := registry.NewMemoryStore()
	cfg := config.Config{RegPrefix: "FHP", RegistrationFee: 6000}

	created, err := seed(ctx, store, cfg, time.Date(2024, 12, 9, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, created)

	created, err = seed(ctx, store, cfg, time.Now())
	require.NoError(t, err)
	assert.False(t, created)

	sess, err := store.Acquire(ctx)
	require.NoError(t, err)
	defer sess.Release()

	r, err := sess.FindByRegistrationID(ctx, "FHP20241209ADMIN01")
	require.NoError(t, err)
	assert.True(t, r.RegistrationFeePaid)
	assert.Equal(t, 2400.0, r.DailyDuesBalance)
	assert.Equal(t, registry.StatusActive, r.MembershipStatus)
}
