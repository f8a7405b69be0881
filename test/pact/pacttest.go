//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "pedidos-api"
	ConsumerName = "pedidos-portal"

	StateCustomerExists = "customer pact-customer exists"
	StateOrderExists    = "order 301 owned by pact-customer exists"
	StateOrderMissing   = "no order with id 999"
)

const (
	ExistingOrderID int64 = 301
	MissingOrderID  int64 = 999

	CustomerName     = "Pact Customer"
	CustomerEmail    = "pact.customer@example.com"
	CustomerPassword = "pact-pass"

	// PlaceholderToken is what the consumer sends; the provider swaps it for a real access token.
	PlaceholderToken = "pact-access-token"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the portal consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
