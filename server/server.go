// Package server exposes an engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yaoapp/kun/log"
)

// DefaultTimeout shutdown grace period
const DefaultTimeout = 5 * time.Second

// New create a server for router
func New(router *gin.Engine, option Option) *Server {
	if option.Timeout <= 0 {
		option.Timeout = DefaultTimeout
	}
	return &Server{
		router: router,
		option: option,
		status: CREATED,
		stop:   make(chan struct{}, 1),
		event:  make(chan Event, 1),
	}
}

// Event the channel reporting lifecycle changes. It holds only the latest
// event, so a slow or absent reader never blocks the server.
func (server *Server) Event() <-chan Event {
	return server.event
}

// Status returns the lifecycle state
func (server *Server) Status() Status {
	server.mu.RLock()
	defer server.mu.RUnlock()
	return server.status
}

// Ready reports whether the server accepts requests
func (server *Server) Ready() bool {
	return server.Status() == READY
}

// Port returns the bound port, useful when the option port is 0
func (server *Server) Port() (int, error) {
	server.mu.RLock()
	defer server.mu.RUnlock()
	addr, ok := server.addr.(*net.TCPAddr)
	if !ok {
		return 0, fmt.Errorf("server is not listening")
	}
	return addr.Port, nil
}

// Start listens and serves until ctx ends or Stop is called, then drains
// in-flight requests for at most Option.Timeout
func (server *Server) Start(ctx context.Context) error {
	server.mu.Lock()
	switch server.status {
	case STARTING, READY:
		server.mu.Unlock()
		return fmt.Errorf("server already started")
	}
	server.status = STARTING
	server.mu.Unlock()

	select {
	case <-server.stop:
	default:
	}

	addr := fmt.Sprintf("%s:%d", server.option.Host, server.option.Port)
	listener, err := net.Listen("tcp4", addr)
	if err != nil {
		log.Error("[Server] %s %s", addr, err.Error())
		server.setState(CREATED, nil)
		server.emit(EventError)
		return err
	}

	srv := &http.Server{Handler: server.router, ReadHeaderTimeout: server.option.Timeout}
	served := make(chan error, 1)
	go func() { served <- srv.Serve(listener) }()

	server.setState(READY, listener.Addr())
	server.emit(EventReady)
	log.Info("[Server] %s is ready", listener.Addr().String())

	var serveErr error
	select {
	case <-ctx.Done():
	case <-server.stop:
	case serveErr = <-served:
		log.Error("[Server] %s %s", listener.Addr().String(), serveErr.Error())
	}

	shutdown, cancel := context.WithTimeout(context.Background(), server.option.Timeout)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil && serveErr == nil {
		log.Warn("[Server] %s shutdown: %s", listener.Addr().String(), err.Error())
		serveErr = err
	}

	server.setState(CLOSED, nil)
	if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		server.emit(EventError)
		return serveErr
	}

	server.emit(EventClosed)
	log.Info("[Server] %s was closed", listener.Addr().String())
	return nil
}

// Stop asks a ready server to shut down, Start returns once it has
func (server *Server) Stop() error {
	if !server.Ready() {
		return fmt.Errorf("server is not ready")
	}
	select {
	case server.stop <- struct{}{}:
	default:
	}
	return nil
}

func (server *Server) setState(status Status, addr net.Addr) {
	server.mu.Lock()
	defer server.mu.Unlock()
	server.status = status
	server.addr = addr
}

// emit replaces any unread event with e
func (server *Server) emit(e Event) {
	for {
		select {
		case server.event <- e:
			return
		default:
		}
		select {
		case <-server.event:
		default:
		}
	}
}
