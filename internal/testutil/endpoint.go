package testutil

import (
	"net/http/httptest"
	"testing"

	"github.com/macrat/statwatch/internal/endpoint"
)

// StartTestServer starts an endpoint server with NewStoreWithSnapshots.
func StartTestServer(t testing.TB) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(endpoint.New(NewStoreWithSnapshots(t), endpoint.Options{}))
	t.Cleanup(srv.Close)

	return srv
}
