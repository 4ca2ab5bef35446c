package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/api"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/api/middleware"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/factory"
)

const adminToken = "e2e-admin-secret"

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "rabblectl-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/rabblectl")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	// Create temp token file
	tokenFile := filepath.Join(t.TempDir(), "admin-token")

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  tokenFile,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	// Keep the caller's environment from leaking an admin token in
	cmd.Env = append(os.Environ(), "RABBLE_ADMIN_TOKEN=")
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// Create application
	app, err := factory.New(factory.Config{Logger: logger})
	require.NoError(t, err)

	tokenHash, err := middleware.HashToken(adminToken)
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		Game:           app.Game,
		ArcadeService:  app.ArcadeService,
		CodeService:    app.CodeService,
		RecordManager:  app.RecordManager,
		Realtime:       app.Realtime,
		Gatherer:       app.Registry,
		AdminTokenHash: tokenHash,
	})

	// Port 0 picks a free port
	serverCfg := api.DefaultServerConfig()
	serverCfg.Host = "127.0.0.1"
	serverCfg.Port = 0
	serverCfg.ShutdownTimeout = 5 * time.Second

	server := api.NewServer(router, serverCfg, logger)
	server.RegisterOnShutdown(app.Hub.Close)
	require.NoError(t, server.Listen())

	// Start server
	go func() {
		if err := server.Start(); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + server.Addr()
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		addr: serverURL,
		shutdown: func() {
			_ = server.Shutdown(context.Background())
			_ = app.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing

type healthResponse struct {
	Status string `json:"status"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type leaderboardEntry struct {
	Username string  `json:"username"`
	Score    float64 `json:"score"`
}

type poolStats struct {
	Level  string `json:"level"`
	Total  int    `json:"total"`
	Unused int    `json:"unused"`
}

type provisionResponse struct {
	Level string `json:"level"`
	Added int    `json:"added"`
}

type scoreAck struct {
	Success  bool     `json:"success"`
	Unlocked string   `json:"unlocked"`
	Codes    []string `json:"codes"`
	PlayerID string   `json:"playerId"`
}

type sessionView struct {
	PlayerID string  `json:"playerId"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Score    float64 `json:"score"`
	News     bool    `json:"news"`
	Codes    string  `json:"codes"`
}

type playerRecord struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Score    float64 `json:"score"`
	Codes    []struct {
		Code  string `json:"code"`
		Level string `json:"level"`
	} `json:"codes"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_AdminRequiresToken(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("codes", "stats")
	require.Error(t, err)
	assert.Contains(t, output, "UNAUTHORIZED")

	output, err = cli.run("--admin-token", "wrong", "codes", "stats")
	require.Error(t, err)
	assert.Contains(t, output, "UNAUTHORIZED")
}

func TestCLI_CodeCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Saved token is picked up by later invocations
	output, err := cli.run("token", "save", adminToken)
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("codes", "add", "--level", "20", "A1", "A2")
	require.NoError(t, err, "output: %s", output)

	var added provisionResponse
	require.NoError(t, json.Unmarshal([]byte(output), &added))
	assert.Equal(t, provisionResponse{Level: "20", Added: 2}, added)

	codeFile := filepath.Join(t.TempDir(), "codes.txt")
	require.NoError(t, os.WriteFile(codeFile, []byte("# batch 2\nB1\n\nB2\n"), 0600))

	output, err = cli.run("codes", "add", "--level", "1000", "--file", codeFile)
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("codes", "stats")
	require.NoError(t, err, "output: %s", output)

	var stats []poolStats
	require.NoError(t, json.Unmarshal([]byte(output), &stats))
	assert.Equal(t, []poolStats{
		{Level: "20", Total: 2, Unused: 2},
		{Level: "1000", Total: 2, Unused: 2},
		{Level: "5000", Total: 0, Unused: 0},
	}, stats)

	// Unknown level
	output, err = cli.run("codes", "add", "--level", "7", "X1")
	require.Error(t, err)
	assert.Contains(t, output, "UNKNOWN_LEVEL")
}

func TestCLI_PlayFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("--admin-token", adminToken, "codes", "add", "--level", "20", "A1")
	require.NoError(t, err, "output: %s", output)

	// First submission creates the record and unlocks the 20 point code
	output, err = cli.run("play", "score", "--username", "alice", "--score", "25", "--email", "alice@example.com", "--news")
	require.NoError(t, err, "output: %s", output)

	var ack scoreAck
	require.NoError(t, json.Unmarshal([]byte(output), &ack))
	assert.True(t, ack.Success)
	assert.Equal(t, "A1", ack.Unlocked)
	assert.Equal(t, []string{"A1"}, ack.Codes)
	require.NotEmpty(t, ack.PlayerID)

	// A second new player cannot take the username
	output, err = cli.run("play", "score", "--username", "alice", "--score", "5")
	require.Error(t, err)
	assert.Contains(t, output, "Username already taken")

	// Updating the record keeps the code and unlocks nothing new
	output, err = cli.run("play", "score", "--username", "alice", "--score", "40",
		"--email", "alice@example.com", "--news", "--player-id", ack.PlayerID)
	require.NoError(t, err, "output: %s", output)

	var update scoreAck
	require.NoError(t, json.Unmarshal([]byte(output), &update))
	assert.Empty(t, update.Unlocked)
	assert.Equal(t, []string{"A1"}, update.Codes)

	output, err = cli.run("play", "lookup", "alice")
	require.NoError(t, err, "output: %s", output)

	var view sessionView
	require.NoError(t, json.Unmarshal([]byte(output), &view))
	assert.Equal(t, ack.PlayerID, view.PlayerID)
	assert.Equal(t, float64(40), view.Score)
	assert.Equal(t, "alice@example.com", view.Email)
	assert.True(t, view.News)
	assert.JSONEq(t, `["A1"]`, view.Codes)

	output, err = cli.run("leaderboard")
	require.NoError(t, err, "output: %s", output)

	var board []leaderboardEntry
	require.NoError(t, json.Unmarshal([]byte(output), &board))
	assert.Equal(t, []leaderboardEntry{{Username: "alice", Score: 40}}, board)

	output, err = cli.run("--admin-token", adminToken, "players", "find", "alice")
	require.NoError(t, err, "output: %s", output)

	var records []playerRecord
	require.NoError(t, json.Unmarshal([]byte(output), &records))
	require.Len(t, records, 1)
	assert.Equal(t, ack.PlayerID, records[0].ID)
	require.Len(t, records[0].Codes, 1)
	assert.Equal(t, "20", records[0].Codes[0].Level)

	output, err = cli.run("play", "delete", ack.PlayerID)
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("play", "lookup", "alice")
	require.NoError(t, err, "output: %s", output)

	var msg messageResponse
	require.NoError(t, json.Unmarshal([]byte(output), &msg))
	assert.Equal(t, "No player named alice", msg.Message)
}

func TestCLI_PlayValidatesLocally(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("play", "score", "--username", "bad name", "--score", "10")
	require.Error(t, err)
	assert.Contains(t, output, "invalid username")

	output, err = cli.run("play", "score", "--username", "bob", "--score", "10", "--email", "not-an-email")
	require.Error(t, err)
	assert.Contains(t, output, "invalid email")

	output, err = cli.run("leaderboard")
	require.NoError(t, err, "output: %s", output)
	assert.JSONEq(t, `[]`, output)
}

func TestCLI_TokenHash(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("token", "hash", "another-secret")
	require.NoError(t, err, "output: %s", output)

	var resp struct {
		Hash string `json:"hash"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.NotEmpty(t, resp.Hash)
}
