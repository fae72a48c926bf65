package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions/internal/api"
	"admissions/internal/client"
	"admissions/internal/crud"
	"admissions/internal/entities"
	"admissions/internal/logger"
	"admissions/pkg/middleware"
)

type harness struct {
	t      *testing.T
	url    string
	token  string
	config string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	auth := middleware.NewAuth("test-secret", "console")
	router := gin.New()
	router.Use(auth.Middleware())
	_, err := api.RegisterRoutes(router, api.Deps{Services: api.NewServices(nil, nil, logger.NopLogger())})
	require.NoError(t, err)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	token, err := auth.Issue("counselor-7", time.Hour)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "config.toml")
	body := "server_url = \"" + srv.URL + "\"\ntoken = \"" + token + "\"\ntimeout = \"5s\"\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	t.Setenv("ADMINCTL_SERVER_URL", "")
	t.Setenv("ADMINCTL_TOKEN", "")
	t.Setenv("ADMINCTL_LOCALE", "")
	return &harness{t: t, url: srv.URL, token: token, config: path}
}

func (h *harness) run(stdin string, args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	root := newRootCmd(&out, &errOut, strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", h.config}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func (h *harness) client() *client.Client {
	return client.New(client.Config{BaseURL: h.url, Token: h.token})
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
server_url = "https://console.example.edu"
token = "file-token"
locale = "de-DE"
timeout = "20s"
`), 0o600))

	t.Setenv("ADMINCTL_SERVER_URL", "")
	t.Setenv("ADMINCTL_LOCALE", "")
	t.Setenv("ADMINCTL_TOKEN", "env-token")

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://console.example.edu", cfg.ServerURL)
	assert.Equal(t, "env-token", cfg.Token)
	assert.Equal(t, "de-DE", cfg.Locale)
	assert.Equal(t, 20*time.Second, cfg.Timeout.Duration)

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err, "an explicit config file must exist")
}

func TestLoadConfig_InvalidTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`timeout = "soon"`), 0o600))
	_, err := loadConfig(path)
	assert.Error(t, err)
}

func TestSections(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run("", "sections", "--category", "team")
	require.NoError(t, err)
	assert.Contains(t, out, "teams")
	assert.Contains(t, out, "routing-rules")
	assert.NotContains(t, out, "programs")

	out, _, err = h.run("", "sections", "--search", "utm")
	require.NoError(t, err)
	assert.Contains(t, out, "marketing-sources")

	_, _, err = h.run("", "sections", "--category", "billing")
	assert.Error(t, err)
}

func TestProgramCreateAndList(t *testing.T) {
	h := newHarness(t)

	out, errOut, err := h.run("", "programs", "create",
		"--set", "name=Data Science BSc",
		"--set", "code=DS-BSC",
		"--set", "tags=data,ai",
		"--set", "duration_months=36",
	)
	require.NoError(t, err)
	assert.Contains(t, errOut, "ok: Program created")
	assert.Contains(t, out, "Data Science BSc")

	items, err := client.NewResource(h.client(), entities.ProgramSchema).List(context.Background(), crud.ListParams{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "counselor-7", items[0].UserID)
	assert.Equal(t, []string{"data", "ai"}, items[0].Tags)
	require.NotNil(t, items[0].DurationMonths)
	assert.Equal(t, 36, *items[0].DurationMonths)

	out, _, err = h.run("", "programs", "list", "--search", "science", "--sort", "name", "--desc")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME ↓")
	assert.Contains(t, out, "1 of 1 rows")

	out, _, err = h.run("", "programs", "list", "--search", "nursing")
	require.NoError(t, err)
	assert.Contains(t, out, `No programs found matching "nursing"`)
}

func TestCreate_ValidationBlocksRequest(t *testing.T) {
	h := newHarness(t)

	_, errOut, err := h.run("", "call-types", "create")
	require.Error(t, err)
	assert.Contains(t, errOut, "error: Validation error: name is required")

	items, err := client.NewResource(h.client(), entities.CallTypeSchema).List(context.Background(), crud.ListParams{})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCreate_BadExpressionShowsExamples(t *testing.T) {
	h := newHarness(t)

	_, errOut, err := h.run("", "routing-rules", "create",
		"--set", "name=Broken",
		"--set", "team_id=team-1",
		"--set", `conditions=[{"type":"expression","expression":"lead.source =="}]`)
	require.Error(t, err)
	assert.Contains(t, errOut, "Validation error")
	assert.Contains(t, errOut, "expression examples:")
	assert.Contains(t, errOut, `lead.source == "google_ads"`)
}

func TestCreate_WithoutTokenIsNotAuthenticated(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, os.WriteFile(h.config, []byte("server_url = \""+h.url+"\"\n"), 0o600))

	_, errOut, err := h.run("", "teams", "create", "--set", "name=Enrollment")
	require.Error(t, err)
	assert.Contains(t, errOut, "Not authenticated")
}

func TestCreate_UnknownField(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("", "teams", "create", "--set", "nickname=x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field")
}

func TestDelete(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	teams := client.NewResource(h.client(), entities.TeamSchema)
	created, err := teams.Create(ctx, &entities.Team{Name: "Enrollment", Color: "#3b82f6", Members: []string{}})
	require.NoError(t, err)

	_, errOut, err := h.run("n\n", "teams", "delete", created.ID)
	require.NoError(t, err)
	assert.Contains(t, errOut, `Delete team "Enrollment"?`)
	assert.Contains(t, errOut, "Cancelled")
	_, err = teams.Get(ctx, created.ID)
	require.NoError(t, err)

	_, _, err = h.run("", "teams", "delete", created.ID)
	require.Error(t, err, "no answer without a terminal")

	_, errOut, err = h.run("", "teams", "delete", created.ID, "--yes")
	require.NoError(t, err)
	assert.Contains(t, errOut, "ok: Team deleted")
	_, err = teams.Get(ctx, created.ID)
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	h := newHarness(t)
	_, err := client.NewResource(h.client(), entities.CampusSchema).Create(context.Background(),
		&entities.Campus{Name: "North", Color: "#3b82f6", Facilities: []string{"Gym", "Library", "Lab", "Pool"}})
	require.NoError(t, err)

	out, _, err := h.run("", "open", "/campuses/123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Campuses\n"))
	assert.Contains(t, out, "[Gym] [Library] [Lab] [+1]")

	out, errOut, err := h.run("", "open", "/nowhere")
	require.NoError(t, err)
	assert.Contains(t, errOut, "No section for /nowhere")
	assert.True(t, strings.HasPrefix(out, "Programs\n"))
}

func TestStripeRuns_NotEnabled(t *testing.T) {
	h := newHarness(t)
	_, errOut, err := h.run("", "stripe", "runs")
	require.Error(t, err)
	assert.Contains(t, errOut, "error: Failed to load sync runs")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Commun…", truncate("Communication", 7))
	assert.Equal(t, "anything", truncate("anything", 0))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
}
