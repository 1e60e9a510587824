package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanglvm/intent-rank/internal/behavior"
	"github.com/khanglvm/intent-rank/internal/recommend"
	"github.com/khanglvm/intent-rank/internal/storage"
)

const testCatalog = `{
  "products": [
    {"id": "p-1", "name": "Smartphone Gaming Pro", "description": "Celular con pantalla de 120Hz", "category": "technology", "price": 1200000, "saleType": "directa"},
    {"id": "p-2", "name": "Sofá de tres cuerpos", "description": "Tapizado en lino", "category": "home", "price": 3500000, "saleType": "pedido"}
  ],
  "stores": [
    {"id": "s-1", "name": "TecnoShop", "description": "Celulares y notebooks", "categories": ["technology"], "rating": 4.7}
  ]
}`

// env is an isolated config, database and catalog.
type env struct {
	dir         string
	configPath  string
	catalogPath string
}

func newEnv(t *testing.T, trackingEnabled bool) *env {
	t.Helper()
	dir := t.TempDir()

	e := &env{
		dir:         dir,
		configPath:  filepath.Join(dir, "intent-rank.yaml"),
		catalogPath: filepath.Join(dir, "catalog.json"),
	}

	cfg := fmt.Sprintf(`storage:
  backend: sqlite
  path: %s
tracking:
  enabled: %t
logging:
  level: error
  format: json
`, filepath.Join(dir, "behavior.db"), trackingEnabled)

	require.NoError(t, os.WriteFile(e.configPath, []byte(cfg), 0600))
	require.NoError(t, os.WriteFile(e.catalogPath, []byte(testCatalog), 0644))
	return e
}

// run executes the root command with --config and returns stdout.
func (e *env) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))

	err := cmd.Execute()
	return out.String(), err
}

func (e *env) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, "", args...)
	require.NoError(t, err, "intent-rank %s", strings.Join(args, " "))
	return out
}

func TestNewRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd()

	names := make(map[string]bool)
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"analyze", "recommend", "track", "behavior", "catalog", "config", "serve", "verify", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}

	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("verbose"))
}

func TestAnalyzeCmd(t *testing.T) {
	e := newEnv(t, true)

	out := e.mustRun(t, "analyze", "quiero", "un", "celular", "entre", "100000", "y", "300000")
	assert.Contains(t, out, "Categories: technology")
	assert.Contains(t, out, "Intent:     buy")
	assert.Contains(t, out, "Price:      100000 - 300000")

	out = e.mustRun(t, "analyze", "--json", "sofá urgente")
	var a map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &a))
	assert.Equal(t, []interface{}{"home"}, a["categories"])
	assert.Equal(t, 0.9, a["urgency"])
}

func TestAnalyzeCmd_RequiresQuery(t *testing.T) {
	e := newEnv(t, true)
	_, err := e.run(t, "", "analyze")
	assert.Error(t, err)
}

func TestTrackAndBehaviorTop(t *testing.T) {
	e := newEnv(t, true)

	assert.Contains(t, e.mustRun(t, "track", "view", "p-1", "--duration", "30s"), "✓ Tracked product_view p-1")
	e.mustRun(t, "track", "view", "p-2")
	e.mustRun(t, "track", "view", "p-1", "--duration", "10s")
	e.mustRun(t, "track", "store-view", "s-1")

	out := e.mustRun(t, "behavior", "top")
	assert.Contains(t, out, "Most viewed (2):")
	assert.Contains(t, out, "1. p-1  2 views, 40s total")

	out = e.mustRun(t, "behavior", "top", "--kind", "store")
	assert.Contains(t, out, "1. s-1  1 views")

	out = e.mustRun(t, "behavior", "recent", "--views", "product", "--limit", "1")
	assert.Contains(t, out, "Recently viewed (1):")
	assert.Contains(t, out, "p-1")
}

func TestTrackCmd_KindsAndFlags(t *testing.T) {
	e := newEnv(t, true)

	assert.Contains(t, e.mustRun(t, "track", "search", "zapatillas", "running", "--results", "12"), `search "zapatillas running"`)
	assert.Contains(t, e.mustRun(t, "track", "click", "p-2", "--context", "home"), "product_click p-2")
	assert.Contains(t, e.mustRun(t, "track", "click", "s-1", "--store"), "store_click s-1")
	assert.Contains(t, e.mustRun(t, "track", "cart", "p-1"), "cart_add p-1")
	assert.Contains(t, e.mustRun(t, "track", "cart", "p-1", "--remove"), "cart_remove p-1")

	out := e.mustRun(t, "behavior", "status")
	assert.Contains(t, out, "Storage:       sqlite, enabled")
	assert.Contains(t, out, "Searches:      1 (max 50)")
	assert.Contains(t, out, "Clicks:        2 (max 100)")
	assert.Contains(t, out, "Cart actions:  2 (max 100)")
}

func TestTrackCmd_Errors(t *testing.T) {
	e := newEnv(t, true)

	_, err := e.run(t, "", "track", "teleport", "p-1")
	assert.Error(t, err)

	_, err = e.run(t, "", "track", "view")
	assert.Error(t, err, "an id is required")

	_, err = e.run(t, "", "track", "search", "   ")
	assert.Error(t, err)

	_, err = e.run(t, "", "behavior", "top", "--kind", "planet")
	assert.Error(t, err)
}

func TestTrackCmd_TrackingDisabled(t *testing.T) {
	e := newEnv(t, false)

	out := e.mustRun(t, "track", "view", "p-1")
	assert.Contains(t, out, "Tracking is disabled")

	out = e.mustRun(t, "behavior", "status")
	assert.Contains(t, out, "Products seen: 0")
}

func TestRecommendCmd(t *testing.T) {
	e := newEnv(t, true)
	e.mustRun(t, "track", "view", "p-1", "--duration", "1m")

	out := e.mustRun(t, "recommend", "--catalog", e.catalogPath, "--json", "celular")
	var res recommend.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.NotEmpty(t, res.Products)
	assert.Equal(t, "p-1", res.Products[0].Product.ID)
	assert.NotEmpty(t, res.Products[0].Reasons)

	out = e.mustRun(t, "behavior", "recent")
	assert.Contains(t, out, `"celular"`)

	out = e.mustRun(t, "recommend", "--catalog", e.catalogPath, "sofá")
	assert.Contains(t, out, "Products (")
	assert.Contains(t, out, "Stores (")
}

func TestRecommendCmd_NoTrack(t *testing.T) {
	e := newEnv(t, true)

	e.mustRun(t, "recommend", "--catalog", e.catalogPath, "--no-track", "celular")
	assert.Contains(t, e.mustRun(t, "behavior", "recent"), "Recent searches (0):")
}

func TestRecommendCmd_NoCatalog(t *testing.T) {
	e := newEnv(t, true)

	_, err := e.run(t, "", "recommend", "celular")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no catalog")
}

func TestBehaviorInterests(t *testing.T) {
	e := newEnv(t, true)
	e.mustRun(t, "track", "view", "p-1")
	e.mustRun(t, "track", "view", "p-1")
	e.mustRun(t, "track", "view", "p-2")
	e.mustRun(t, "track", "view", "unknown")

	out := e.mustRun(t, "behavior", "interests", "--catalog", e.catalogPath)
	assert.Contains(t, out, "Interest categories (2):")
	assert.Less(t, strings.Index(out, "technology"), strings.Index(out, "home"))
}

func TestBehaviorSummary(t *testing.T) {
	e := newEnv(t, true)
	e.mustRun(t, "track", "view", "p-1", "--duration", "4s")
	e.mustRun(t, "track", "cart", "p-1")

	out := e.mustRun(t, "behavior", "summary")
	var sum behavior.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	require.Len(t, sum.Products, 1)
	assert.Equal(t, 1, sum.Products[0].AddToCartCount)
	assert.Equal(t, int64(4000), sum.Products[0].AvgDurationMs)
	assert.True(t, strings.HasPrefix(sum.SessionID, "session_"))
}

func TestBehaviorExport(t *testing.T) {
	e := newEnv(t, true)
	e.mustRun(t, "track", "search", "Celular")
	e.mustRun(t, "track", "search", "celular")

	path := filepath.Join(e.dir, "out", "summary.json")
	out := e.mustRun(t, "behavior", "export", "--output", path, "--anonymize")
	assert.Contains(t, out, "1 search terms")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var sum behavior.Summary
	require.NoError(t, json.Unmarshal(data, &sum))
	require.Len(t, sum.Searches, 1)
	assert.Equal(t, storage.HashQuery("celular"), sum.Searches[0].Term)
	assert.Equal(t, 2, sum.Searches[0].Count)

	_, err = os.Stat(path + ".lock")
	assert.True(t, os.IsNotExist(err), "lock file should be removed")
}

func TestBehaviorClear(t *testing.T) {
	e := newEnv(t, true)
	e.mustRun(t, "track", "search", "notebook")
	e.mustRun(t, "track", "view", "p-1")

	out, err := e.run(t, "n\n", "behavior", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled")
	assert.Contains(t, e.mustRun(t, "behavior", "status"), "Searches:      1")

	out, err = e.run(t, "y\n", "behavior", "clear", "--searches")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Cleared the search history")
	status := e.mustRun(t, "behavior", "status")
	assert.Contains(t, status, "Searches:      0")
	assert.Contains(t, status, "Products seen: 1")

	e.mustRun(t, "behavior", "clear", "--yes")
	assert.Contains(t, e.mustRun(t, "behavior", "status"), "Products seen: 0")
}

func TestCatalogSearch(t *testing.T) {
	e := newEnv(t, true)

	out := e.mustRun(t, "catalog", "search", "--catalog", e.catalogPath, "celular")
	assert.Contains(t, out, "p-1")
	assert.NotContains(t, out, "p-2")

	_, err := e.run(t, "", "catalog", "search", "celular")
	assert.Error(t, err)
}

func TestConfigInitAndShow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fresh.yaml")

	run := func(args ...string) (string, error) {
		cmd := NewRootCmd()
		cmd.SetArgs(append([]string{"--config", path}, args...))
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		err := cmd.Execute()
		return out.String(), err
	}

	out, err := run("config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Wrote "+path)

	_, err = run("config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = run("config", "init", "--force")
	require.NoError(t, err)
	_, err = os.Stat(path + ".bak")
	assert.NoError(t, err, "overwrite keeps a backup")

	out, err = run("config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "backend: sqlite")
	assert.Contains(t, out, "default_limit: 10")
}

func TestVerifyCmd(t *testing.T) {
	e := newEnv(t, true)

	out := e.mustRun(t, "verify")
	assert.Contains(t, out, "✓ Config: "+e.configPath)
	assert.Contains(t, out, "✓ Storage: sqlite")
	assert.Contains(t, out, "- Catalog: not configured")

	out = e.mustRun(t, "verify", "--catalog", e.catalogPath)
	assert.Contains(t, out, "✓ Catalog: 2 products, 1 stores (3 indexed)")
}

func TestVerifyCmd_BadConfig(t *testing.T) {
	e := newEnv(t, true)
	require.NoError(t, os.WriteFile(e.configPath, []byte("storage:\n  backend: floppy\n"), 0600))

	_, err := e.run(t, "", "verify")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.backend")
}

func TestServeCmd(t *testing.T) {
	e := newEnv(t, true)

	in := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"track","params":{"kind":"view","id":"p-1","durationMs":5000}}`,
		`{"jsonrpc":"2.0","id":2,"method":"behavior.mostViewed","params":{"kind":"product"}}`,
	}, "\n")

	out, err := e.run(t, in, "serve", "--catalog", e.catalogPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"tracked":true`)
	assert.Contains(t, lines[1], `"id":"p-1"`)

	// the queued view was persisted
	assert.Contains(t, e.mustRun(t, "behavior", "top"), "1. p-1  1 views")
}

func TestVersionCmd(t *testing.T) {
	e := newEnv(t, true)

	out := e.mustRun(t, "version")
	assert.Contains(t, out, "Version:")
	assert.Contains(t, out, "Commit:")
	assert.Contains(t, out, "Built:")
}

func TestVersionCmd_JSON(t *testing.T) {
	e := newEnv(t, true)

	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(e.mustRun(t, "version", "--json")), &info))
	assert.Contains(t, info, "version")
	assert.Contains(t, info, "commit")
}
