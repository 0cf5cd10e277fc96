// Package server exposes the master's state over HTTP: queue depths,
// worker heartbeats and a health probe.
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lab/denoiser/internal/logging"
	"github.com/lab/denoiser/internal/queue"
	"github.com/lab/denoiser/internal/worker"
)

// Status is the aggregate queue view.
type Status struct {
	Commands int64 `json:"commands"`
	Finished int64 `json:"finished"`
	Logging  int64 `json:"logging"`
}

// Server is the status API.
type Server struct {
	rdb *redis.Client
	log *zap.Logger
}

// New builds the API over the queue fabric.
func New(rdb *redis.Client, log *zap.Logger) *Server {
	return &Server{rdb: rdb, log: log}
}

// Router assembles the gin handler.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		if err := s.rdb.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/status", func(c *gin.Context) {
		status, err := s.queueStatus(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, status)
	})

	router.GET("/workers", func(c *gin.Context) {
		beats, err := s.workerHeartbeats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, beats)
	})

	return router
}

// Run serves the API until the listener fails.
func (s *Server) Run(addr string) error {
	s.log.Info("status API listening", zap.String("addr", addr))
	return s.Router().Run(addr)
}

func (s *Server) queueStatus(ctx context.Context) (*Status, error) {
	status := &Status{}
	for _, q := range []struct {
		name  string
		field *int64
	}{
		{queue.CommandQueue, &status.Commands},
		{queue.FinishedQueue, &status.Finished},
		{logging.LogQueue, &status.Logging},
	} {
		length, err := queue.NewManager(s.rdb, q.name).Len(ctx)
		if err != nil {
			return nil, err
		}
		*q.field = length
	}
	return status, nil
}

func (s *Server) workerHeartbeats(ctx context.Context) ([]worker.Heartbeat, error) {
	entries, err := s.rdb.HGetAll(ctx, worker.HeartbeatHash).Result()
	if err != nil {
		return nil, err
	}

	beats := make([]worker.Heartbeat, 0, len(entries))
	for _, payload := range entries {
		var beat worker.Heartbeat
		if err := json.Unmarshal([]byte(payload), &beat); err != nil {
			continue
		}
		beats = append(beats, beat)
	}
	return beats, nil
}
