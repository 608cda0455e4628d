package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-chat/internal/client"
	"portfolio-chat/internal/models"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestVersionJSON(t *testing.T) {
	cmd := newRootCmd("1.2.3", "abc", "today")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version", "--json"})
	require.NoError(t, cmd.Execute())

	var info map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.Equal(t, "1.2.3", info["version"])
	assert.Equal(t, "abc", info["commit"])
}

func TestRunWatchPrintsWindow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rooms":
			_ = json.NewEncoder(w).Encode([]models.RoomSummary{{Room: models.Room{ID: "general", Name: "General"}}})
		case "/chat":
			_ = json.NewEncoder(w).Encode([]models.Message{
				{ID: "m1", Username: "Ann", Content: "hello", CreatedAt: time.Now()},
				{ID: "m2", Username: "root", Content: "welcome", IsAdmin: true, CreatedAt: time.Now()},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- runWatch(ctx, out, client.New(srv.URL, time.Second), "", 10*time.Millisecond) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "root [admin]: welcome")
	}, 2*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Contains(t, out.String(), "watching General (general)")
	assert.Contains(t, out.String(), "Ann: hello")
}

func TestWatchIntervalFromConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("chat:\n  poll_interval: 5s\n"), 0o600))
	prev := configPath
	configPath = dir
	t.Cleanup(func() { configPath = prev })

	interval, err := watchInterval(0)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, interval)

	interval, err = watchInterval(250 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, interval)
}
