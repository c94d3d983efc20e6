package http

import (
	"context"
	"net/http"
)

// Request HTTP Request
type Request struct {
	url     string
	headers http.Header
	data    interface{}
	ctx     context.Context
}

// Response HTTP Response
type Response struct {
	Status  int         `json:"status"`
	Data    interface{} `json:"data"`
	Headers http.Header `json:"headers"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
}
