package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/tenderwatch/config"
	"github.com/target/tenderwatch/internal/ports"
	"github.com/target/tenderwatch/internal/testutil"
)

func TestBuildSessionProvider_RedisSessions(t *testing.T) {
	mr, client := testutil.SetupTestRedis(t)
	testutil.SeedSession(t, mr, "tw:sess-1", testutil.NewSession().WithID("sess-1").WithUser("u1", "u1@example.test").Build())

	provider, err := BuildSessionProvider(AuthConfig{
		Auth:        config.AuthConfig{SessionPrefix: "tw:"},
		RedisClient: client,
	})
	require.NoError(t, err)

	creds := ports.Credentials{SessionID: "sess-1"}
	assert.True(t, provider.State(context.Background(), creds).Loading)

	require.NoError(t, provider.Start(context.Background()))

	state := provider.State(context.Background(), creds)
	require.True(t, state.Authenticated())
	assert.Equal(t, "u1", state.User.ID)
}

func TestBuildSessionProvider_NoDependencies(t *testing.T) {
	provider, err := BuildSessionProvider(AuthConfig{})
	require.NoError(t, err)

	require.NoError(t, provider.Start(context.Background()))
	state := provider.State(context.Background(), ports.Credentials{SessionID: "x", BearerToken: "y"})
	assert.False(t, state.Loading)
	assert.Nil(t, state.User)
}

func TestBuildSessionProvider_OIDCIssuerUnreachable(t *testing.T) {
	provider, err := BuildSessionProvider(AuthConfig{
		Auth: config.AuthConfig{
			OIDC: config.OIDCConfig{IssuerURL: "http://127.0.0.1:1", ClientID: "tenderwatch"},
		},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.Error(t, provider.Start(ctx))

	// Discovery failure settles as unauthenticated rather than loading.
	state := provider.State(context.Background(), ports.Credentials{BearerToken: "token"})
	assert.False(t, state.Loading)
	assert.Nil(t, state.User)
}
