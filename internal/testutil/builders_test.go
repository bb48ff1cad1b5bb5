package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/tenderwatch/internal/domain/auth"
)

func TestSessionBuilder(t *testing.T) {
	sess := NewSession().WithID("s9").WithRole(domainauth.RoleAdmin).Build()
	assert.Equal(t, "s9", sess.ID)
	assert.Equal(t, domainauth.RoleAdmin, sess.Role)
	assert.False(t, sess.Expired(time.Now()))

	assert.True(t, NewSession().Expired().Build().Expired(time.Now()))
	assert.Equal(t, domainauth.RoleAdmin, AdminSession().Role)
}

func TestSetupTestRedisAndSeed(t *testing.T) {
	mr, client := SetupTestRedis(t)
	SeedSession(t, mr, "session:s1", NewSession().WithID("s1").Build())

	raw, err := client.Get(context.Background(), "session:s1").Result()
	require.NoError(t, err)
	assert.Contains(t, raw, `"id":"s1"`)
}
