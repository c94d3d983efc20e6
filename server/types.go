package server

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pennsieve/cypherqa"
	"github.com/pennsieve/cypherqa/pathstore"
)

// Status the lifecycle state of a server
type Status uint8

const (
	// CREATED the server instance was created
	CREATED Status = iota
	// STARTING the server instance is starting
	STARTING
	// READY the server instance is accepting requests
	READY
	// CLOSED the server instance was stopped
	CLOSED
)

// Event what a running server reports on its event channel
type Event uint8

const (
	// EventReady the listener is up
	EventReady Event = iota
	// EventClosed the server shut down
	EventClosed
	// EventError the listener could not be opened or serving failed
	EventError
)

// RequestIDHeader carries the id assigned to every API request
const RequestIDHeader = "X-Request-Id"

// Option the http server option
type Option struct {
	Port    int           `json:"port,omitempty"`
	Host    string        `json:"host,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty"` // grace period for in-flight requests on shutdown
}

// Server serves a router until its context ends or Stop is called
type Server struct {
	router *gin.Engine
	option Option
	addr   net.Addr
	status Status
	stop   chan struct{}
	event  chan Event
	mu     sync.RWMutex
}

// Backend the question answering session served by the API
type Backend interface {
	ProcessQuery(ctx context.Context, question string) (*cypherqa.Response, error)
	Populate(ctx context.Context, count int, rebuild bool) (*pathstore.PopulateReport, error)
	Size(ctx context.Context) (int, error)
	GuidePaths() []string
	Collection() string
}

// QueryRequest body of POST /api/query
type QueryRequest struct {
	Question string `json:"question" binding:"required"`
}

// PopulateRequest body of POST /api/populate
type PopulateRequest struct {
	Count   int  `json:"count" binding:"required,min=1"`
	Rebuild bool `json:"rebuild"`
}

// ErrorResponse the body of every failed request
type ErrorResponse struct {
	RequestID string      `json:"request_id"`
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	History   interface{} `json:"attempt_history,omitempty"`
}
