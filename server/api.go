package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pennsieve/cypherqa/qa"
	"github.com/pennsieve/cypherqa/types"
	"github.com/yaoapp/kun/log"
)

// Router builds the API routes for backend
func Router(backend Backend) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestID, accessLog)

	api := router.Group("/api")
	api.POST("/query", queryHandler(backend))
	api.POST("/populate", populateHandler(backend))
	api.GET("/paths", pathsHandler(backend))
	api.GET("/health", healthHandler(backend))
	return router
}

func requestID(c *gin.Context) {
	id := c.GetHeader(RequestIDHeader)
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	c.Set("request_id", id)
	c.Header(RequestIDHeader, id)
	c.Next()
}

func accessLog(c *gin.Context) {
	start := time.Now()
	c.Next()
	log.With(log.F{
		"request_id": c.GetString("request_id"),
		"status":     c.Writer.Status(),
		"elapsed":    time.Since(start).String(),
	}).Info("[Server] %s %s", c.Request.Method, c.Request.URL.Path)
}

func queryHandler(backend Backend) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req QueryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abort(c, http.StatusBadRequest, err)
			return
		}

		res, err := backend.ProcessQuery(c.Request.Context(), req.Question)
		if err != nil {
			var summaryErr *qa.SummarizationError
			if res != nil && errors.As(err, &summaryErr) {
				c.JSON(http.StatusOK, gin.H{"request_id": c.GetString("request_id"), "result": res, "warning": err.Error()})
				return
			}
			abort(c, statusOf(err), err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"request_id": c.GetString("request_id"), "result": res})
	}
}

func populateHandler(backend Backend) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PopulateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abort(c, http.StatusBadRequest, err)
			return
		}

		report, err := backend.Populate(c.Request.Context(), req.Count, req.Rebuild)
		if err != nil {
			abort(c, statusOf(err), err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"request_id": c.GetString("request_id"), "report": report})
	}
}

func pathsHandler(backend Backend) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": c.GetString("request_id"), "paths": backend.GuidePaths()})
	}
}

func healthHandler(backend Backend) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{"status": "ok", "collection": backend.Collection()}
		size, err := backend.Size(c.Request.Context())
		if err != nil {
			body["status"] = "degraded"
			body["error"] = err.Error()
		} else {
			body["size"] = size
		}
		c.JSON(http.StatusOK, body)
	}
}

// statusOf maps engine errors onto HTTP status codes
func statusOf(err error) int {
	var failure *qa.TerminalFailure
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, types.ErrCollectionNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrRetrieval), errors.Is(err, types.ErrNotConnected):
		return http.StatusServiceUnavailable
	case errors.As(err, &failure):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func abort(c *gin.Context, code int, err error) {
	res := ErrorResponse{RequestID: c.GetString("request_id"), Code: code, Message: err.Error()}
	var failure *qa.TerminalFailure
	if errors.As(err, &failure) {
		res.History = failure.History
	}
	if code >= http.StatusInternalServerError {
		log.With(log.F{"request_id": res.RequestID}).Error("[Server] %s", err.Error())
	}
	c.AbortWithStatusJSON(code, res)
}
