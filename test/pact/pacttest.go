//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// Contract between the sales service and the inventory authority it calls.
const (
	SalesServiceName     = "sales-service"
	InventoryServiceName = "inventory-service"

	StateProductsInStock = "products A and B are in stock"
	StateProductMissing  = "product Q is unknown"
	StateRestockAccepted = "inventory accepts restocks"
)

// Contract between register front ends and the sales API exposed here.
const (
	RegisterName = "register-ui"
	SalesAPIName = "sales-api"

	StateInventoryStocksA = "inventory stocks product A at 30.00"
	StateSaleExists       = "sale s0000001 exists"
	StateSaleMissing      = "no sale nope exists"
)

const (
	ExistingSaleNumber = "s0000001"
	MissingSaleNumber  = "nope"
	ExampleOperation   = "ab12cd34"
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

// PactFile returns the canonical pact file path for a consumer/provider pair.
func PactFile(t testing.TB, consumer, provider string) string {
	t.Helper()
	return filepath.Join(PactDir(t), consumer+"-"+provider+".json")
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

// ExampleSnapshot is a stable inventory answer for one line.
func ExampleSnapshot(barcode, name string, quantity int, price float64) map[string]any {
	return map[string]any{
		"barcode":   barcode,
		"skuCode":   "SKU-" + barcode,
		"name":      name,
		"quantity":  quantity,
		"inStock":   true,
		"unitPrice": price,
	}
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
