package cmd

import (
	"context"
	"fmt"
	"image"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/omniscan/internal/capture"
	"github.com/lehigh-university-libraries/omniscan/internal/config"
	"github.com/lehigh-university-libraries/omniscan/internal/export"
)

// trackingSource counts streams opened and released
type trackingSource struct {
	mu       sync.Mutex
	opened   int
	released int
}

func (s *trackingSource) Open(ctx context.Context, constraints capture.Constraints) (capture.Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened++
	return &trackingStream{source: s}, nil
}

func (s *trackingSource) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened, s.released
}

type trackingStream struct {
	source *trackingSource
}

func (s *trackingStream) Frame() (image.Image, bool) { return nil, false }

func (s *trackingStream) Close() error {
	s.source.mu.Lock()
	defer s.source.mu.Unlock()
	s.source.released++
	return nil
}

func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return strconv.Itoa(port)
}

func testServeConfig(port string) config.Config {
	return config.Config{
		Provider:       "gemini",
		Model:          "gemini-2.5-flash",
		SampleInterval: 10 * time.Millisecond,
		Cooldown:       10 * time.Millisecond,
		Decoder:        "zxing",
		Cue:            "silent",
		Port:           port,
	}
}

func TestServeReleasesCameraWhenListenFails(t *testing.T) {
	held, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer held.Close()
	port := strconv.Itoa(held.Addr().(*net.TCPAddr).Port)

	source := &trackingSource{}
	err = runServe(context.Background(), testServeConfig(port), source, nil)
	require.Error(t, err)

	opened, released := source.counts()
	assert.Equal(t, opened, released, "stream released before returning")

	time.Sleep(50 * time.Millisecond)
	openedLater, releasedLater := source.counts()
	assert.Equal(t, opened, openedLater, "no stream opened after returning")
	assert.Equal(t, released, releasedLater)
}

func TestServeShutdownWithOpenEventStream(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")

	port := freePort(t)
	exportPath := filepath.Join(t.TempDir(), "history.yaml")
	base := "http://127.0.0.1:" + port

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := executeContext(ctx, t, "serve", "--port", port, "--cue", "silent", "--export", exportPath)
		done <- err
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/healthcheck")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	resp, err := http.Post(base+"/api/scan", "application/json", strings.NewReader(`{"raw_value":"https://example.com"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	events, err := http.Get(base + "/api/events")
	require.NoError(t, err)
	defer events.Body.Close()
	require.Equal(t, http.StatusOK, events.StatusCode)

	start := time.Now()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(shutdownTimeout):
		t.Fatal("serve did not stop before the shutdown timeout")
	}
	assert.Less(t, time.Since(start), shutdownTimeout)

	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)

	var session export.Session
	require.NoError(t, yaml.Unmarshal(data, &session))
	require.Equal(t, 1, session.Count)
	assert.Equal(t, "https://example.com", session.Entries[0].RawValue)
	assert.Equal(t, "manual_entry", session.Entries[0].Format)
}

func TestServeReportsListenFailure(t *testing.T) {
	held, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer held.Close()

	_, err = execute(t, "serve", "--port", fmt.Sprint(held.Addr().(*net.TCPAddr).Port), "--cue", "silent")
	assert.Error(t, err)
}
