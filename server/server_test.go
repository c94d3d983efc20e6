package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartStop(t *testing.T) {
	server := New(statusRouter(), Option{Host: "127.0.0.1"})
	assert.Error(t, server.Stop())

	done := start(server, context.Background())
	require.Equal(t, EventReady, <-server.Event())
	assert.True(t, server.Ready())

	status, data := get(t, server, "/status")
	assert.Equal(t, 200, status)
	assert.Equal(t, []byte(`"ok"`), data)

	assert.Error(t, server.Start(context.Background()))

	require.NoError(t, server.Stop())
	require.NoError(t, wait(t, done))
	assert.Equal(t, EventClosed, <-server.Event())
	assert.Equal(t, CLOSED, server.Status())
	_, err := server.Port()
	assert.Error(t, err)
}

func TestStopWithoutReadingEvents(t *testing.T) {
	server := New(statusRouter(), Option{Host: "127.0.0.1"})
	done := start(server, context.Background())

	require.Eventually(t, server.Ready, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, server.Stop())
	require.NoError(t, wait(t, done))

	// the channel keeps only the latest event
	assert.Equal(t, EventClosed, <-server.Event())
}

func TestStartContextCancel(t *testing.T) {
	server := New(statusRouter(), Option{Host: "127.0.0.1"})
	ctx, cancel := context.WithCancel(context.Background())
	done := start(server, ctx)

	require.Eventually(t, server.Ready, 2*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, wait(t, done))
	assert.False(t, server.Ready())

	// a closed server can be started again
	done = start(server, context.Background())
	require.Eventually(t, server.Ready, 2*time.Second, 10*time.Millisecond)
	status, _ := get(t, server, "/status")
	assert.Equal(t, 200, status)
	require.NoError(t, server.Stop())
	require.NoError(t, wait(t, done))
}

func TestStartListenError(t *testing.T) {
	busy, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	server := New(statusRouter(), Option{Host: "127.0.0.1", Port: busy.Addr().(*net.TCPAddr).Port})
	assert.Error(t, server.Start(context.Background()))
	assert.Equal(t, EventError, <-server.Event())
	assert.Equal(t, CREATED, server.Status())
}

func statusRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.GET("/status", func(ctx *gin.Context) {
		ctx.JSON(200, "ok")
	})
	return router
}

func start(server *Server, ctx context.Context) chan error {
	done := make(chan error, 1)
	go func() { done <- server.Start(ctx) }()
	return done
}

func wait(t *testing.T, done chan error) error {
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after shutdown")
		return nil
	}
}

func get(t *testing.T, server *Server, path string) (int, []byte) {
	port, err := server.Port()
	require.NoError(t, err)

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d%s", port, path))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}
