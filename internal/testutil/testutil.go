package testutil

import (
	"encoding/json"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	domainauth "github.com/target/tenderwatch/internal/domain/auth"
)

// TestingTB is the subset of testing.TB the helpers need.
type TestingTB interface {
	Helper()
	Cleanup(func())
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
	Logf(format string, args ...interface{})
}

// SetupTestRedis starts an in-process Redis and returns it with a connected client.
// Both are closed when the test finishes.
func SetupTestRedis(t TestingTB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatal("Failed to start miniredis:", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Cleanup(func() {
		if cerr := client.Close(); cerr != nil {
			t.Logf("warning: failed to close redis client: %v", cerr)
		}
		mr.Close()
	})
	return mr, client
}

// SeedSession writes sess under key the way the identity service stores it.
func SeedSession(t TestingTB, mr *miniredis.Miniredis, key string, sess domainauth.Session) {
	t.Helper()

	data, err := json.Marshal(sess)
	if err != nil {
		t.Fatalf("marshal session: %v", err)
	}
	if err := mr.Set(key, string(data)); err != nil {
		t.Fatalf("seed session %s: %v", key, err)
	}
}
