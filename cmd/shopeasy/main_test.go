package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testProducts = []map[string]interface{}{
	{"id": 1, "title": "Backpack", "price": 109.95, "category": "men's clothing", "image": "https://img/1.jpg", "description": "Fits a laptop", "rating": map[string]interface{}{"rate": 3.9, "count": 120}},
	{"id": 2, "title": "Slim Fit T-Shirt", "price": 22.3, "category": "men's clothing", "image": "https://img/2.jpg"},
	{"id": 3, "title": "Gold Ring", "price": 168, "category": "jewelery", "image": "https://img/3.jpg"},
}

func fakeCatalog(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(testProducts)
	})
	mux.HandleFunc("GET /products/categories", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]string{"jewelery", "men's clothing"})
	})
	mux.HandleFunc("GET /products/category/{category}", func(w http.ResponseWriter, r *http.Request) {
		var out []map[string]interface{}
		for _, p := range testProducts {
			if p["category"] == r.PathValue("category") {
				out = append(out, p)
			}
		}
		_ = json.NewEncoder(w).Encode(out)
	})
	mux.HandleFunc("GET /products/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(r.PathValue("id"))
		for _, p := range testProducts {
			if p["id"] == id {
				_ = json.NewEncoder(w).Encode(p)
				return
			}
		}
		// the public API answers unknown ids with an empty body
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// cliHarness runs the command against a fake catalog and a per-test SQLite file
type cliHarness struct {
	t   *testing.T
	dsn string
}

func newCLI(t *testing.T) *cliHarness {
	srv := fakeCatalog(t)
	t.Setenv("SHOPEASY_CATALOG_URL", srv.URL)
	t.Setenv("SHOPEASY_RATE_LIMIT", "0")
	return &cliHarness{t: t, dsn: filepath.Join(t.TempDir(), "cli.db")}
}

func (c *cliHarness) run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	full := append([]string{"--storage", "sqlite", "--dsn", c.dsn}, args...)
	code := run(context.Background(), full, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Products(t *testing.T) {
	c := newCLI(t)

	code, out, errOut := c.run("products")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Backpack")
	assert.Contains(t, out, "Men's Clothing")
	assert.Contains(t, out, "Showing 3 of 3 products")

	code, out, _ = c.run("products", "--search", "ring")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Gold Ring")
	assert.NotContains(t, out, "Backpack")
	assert.Contains(t, out, "Showing 1 of 1 products")
}

func TestRun_ProductDetail(t *testing.T) {
	c := newCLI(t)

	code, out, errOut := c.run("product", "--qty", "9", "1")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Backpack")
	assert.Contains(t, out, "Fits a laptop")
	assert.Contains(t, out, "Only a few left at this quantity")
	assert.Contains(t, out, "Related products")
	assert.Contains(t, out, "Slim Fit T-Shirt")
}

func TestRun_ProductNotFound(t *testing.T) {
	c := newCLI(t)

	code, _, errOut := c.run("product", "99")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Product not found.")
}

func TestRun_CartLifecycle(t *testing.T) {
	c := newCLI(t)

	code, out, _ := c.run("cart")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Your cart is empty")

	code, out, errOut := c.run("cart", "add", "--qty", "2", "--var", "size=M", "1")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Added Backpack (quantity 2)")

	code, out, _ = c.run("cart", "add", "--var", "size=M", "1")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Updated Backpack (quantity 3)")

	code, out, _ = c.run("cart", "list")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "1-eyJzaXplIjoiTSJ9")
	assert.Contains(t, out, "size=M")
	assert.Contains(t, out, "Tax (18%)")

	code, out, _ = c.run("cart", "update", "1-eyJzaXplIjoiTSJ9", "-3")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Removed Backpack")

	code, out, _ = c.run("cart", "clear")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Cart cleared")
}

func TestRun_CartQuantityLimit(t *testing.T) {
	c := newCLI(t)

	code, _, _ := c.run("cart", "add", "--qty", "10", "3")
	require.Equal(t, 0, code)

	code, _, errOut := c.run("cart", "update", "3-e30=", "1")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Maximum 10 items per product")
}

func TestRun_AuthNotConfigured(t *testing.T) {
	c := newCLI(t)

	code, _, errOut := c.run("whoami")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Sign-in is not available right now.")
}

func TestRun_UsageErrors(t *testing.T) {
	c := newCLI(t)

	code, _, _ := c.run()
	assert.Equal(t, 2, code)

	code, _, errOut := c.run("teleport")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, `unknown command "teleport"`)

	code, _, _ = c.run("cart", "add", "abc")
	assert.Equal(t, 2, code)
}

func TestRun_CatalogUnreachable(t *testing.T) {
	t.Setenv("SHOPEASY_CATALOG_URL", "http://127.0.0.1:1")
	t.Setenv("SHOPEASY_RATE_LIMIT", "0")
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"--storage", "inmemory", "products"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Could not reach the store")

	stderr.Reset()
	code = run(context.Background(), []string{"--storage", "inmemory", "--sample", "products"}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Contains(t, stderr.String(), "Showing saved results")
}

func TestParseVariations(t *testing.T) {
	v, err := parseVariations("size=M, color = red")
	require.NoError(t, err)
	assert.Equal(t, "M", v["size"])
	assert.Equal(t, "red", v["color"])

	v, err = parseVariations("")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = parseVariations("size")
	assert.Error(t, err)
}
