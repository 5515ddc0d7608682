package alpaca

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SmartTrade/pkg/logger"
)

func streamTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return log
}

// wsTestServer upgrades each request, runs fn, and closes the socket
// when fn returns.
func wsTestServer(t *testing.T, fn func(conn *websocket.Conn)) (*httptest.Server, string) {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		fn(conn)
	}))
	t.Cleanup(srv.Close)
	return srv, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestStreamReadDeliversTicks(t *testing.T) {
	_, wsURL := wsTestServer(t, func(conn *websocket.Conn) {
		if _, _, err := conn.ReadMessage(); err != nil { // auth
			return
		}
		frame := `[{"T":"t","S":"AAPL","p":123.45,"s":10,"t":"2025-01-02T15:04:05Z"}]`
		if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(time.Second))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	s := NewStream(Config{APIKey: "k", APISecret: "s"}, wsURL, time.Millisecond, time.Second, streamTestLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Connect(ctx))
	t.Cleanup(func() { _ = s.Close() })
	assert.True(t, s.IsConnected())

	ticks, _ := s.Read(ctx)
	select {
	case tick := <-ticks:
		assert.Equal(t, "AAPL", tick.Symbol)
		assert.Equal(t, 123.45, tick.Price)
		assert.Equal(t, int64(10), tick.Size)
	case <-time.After(2 * time.Second):
		t.Fatal("no tick received")
	}
}

func TestStreamReadWithoutConnectionFailsFast(t *testing.T) {
	s := NewStream(Config{}, "ws://127.0.0.1:0", time.Millisecond, time.Second, streamTestLogger(t))

	ticks, errs := s.Read(context.Background())

	err, ok := <-errs
	require.True(t, ok)
	assert.Error(t, err)
	_, open := <-ticks
	assert.False(t, open)
}

func TestStreamPingLoopEndsWithReadSession(t *testing.T) {
	_, wsURL := wsTestServer(t, func(conn *websocket.Conn) {
		// Drain client frames, then hang up to force a reconnect.
		_ = conn.SetReadDeadline(time.Now().Add(50 * time.Millisecond))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	s := NewStream(Config{APIKey: "k", APISecret: "s"}, wsURL, time.Millisecond, time.Millisecond, streamTestLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	before := runtime.NumGoroutine()

	require.NoError(t, s.Connect(ctx))
	for i := 0; i < 3; i++ {
		_, errs := s.Read(ctx)
		for range errs {
		}
		if i < 2 {
			require.NoError(t, s.Reconnect(ctx))
		}
	}
	require.NoError(t, s.Close())

	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before+2
	}, 2*time.Second, 10*time.Millisecond,
		"ping goroutines must exit with their read session")
}
