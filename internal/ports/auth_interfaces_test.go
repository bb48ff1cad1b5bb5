package ports_test

import (
	"testing"

	"github.com/target/tenderwatch/internal/adapters/authroles"
	redisadapter "github.com/target/tenderwatch/internal/adapters/redis"
	"github.com/target/tenderwatch/internal/mocks"
	mockauth "github.com/target/tenderwatch/internal/mocks/auth"
	"github.com/target/tenderwatch/internal/ports"
	"github.com/target/tenderwatch/internal/service"
)

// This test only verifies that adapters and mocks conform to the ports at compile time.
func TestImplementationsSatisfyPorts(t *testing.T) {
	t.Helper()

	var _ ports.SessionStore = (*mockauth.MemorySessionStore)(nil)
	var _ ports.TokenVerifier = (*mockauth.StubVerifier)(nil)
	var _ ports.Warmer = (*mockauth.StubWarmer)(nil)
	var _ ports.SessionSource = (*mocks.MockSessionSource)(nil)
	var _ ports.SessionSource = (*service.SessionProvider)(nil)
	var _ ports.SessionStore = (*redisadapter.SessionStore)(nil)
	var _ ports.Warmer = (*redisadapter.SessionStore)(nil)
	var _ ports.ResponseCache = (*redisadapter.ResponseCache)(nil)
	var _ ports.RoleMapper = (*authroles.StaticRoleMapper)(nil)
}
