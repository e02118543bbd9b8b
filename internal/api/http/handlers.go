// Package http provides the REST handlers for the backend.
package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pairpad/backend/internal/domain/exec"
	"github.com/pairpad/backend/internal/infrastructure/logging"
)

// Runner is the slice of the execution orchestrator the handlers need.
type Runner interface {
	Run(ctx context.Context, req exec.RunRequest) (exec.RunResult, error)
}

// Handlers contains all HTTP handlers.
type Handlers struct {
	runner Runner
	logger *logging.Logger
}

// NewHandlers creates a new handler set.
func NewHandlers(runner Runner, logger *logging.Logger) *Handlers {
	return &Handlers{
		runner: runner,
		logger: logger,
	}
}

// Ping handles the liveness probe.
func (h *Handlers) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// Health handles a detailed health check.
func (h *Handlers) Health(c *gin.Context) {
	languages := make([]string, 0, len(exec.Languages()))
	for _, lang := range exec.Languages() {
		languages = append(languages, string(lang))
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "collab-editor-backend",
		"languages": languages,
	})
}

// Run executes submitted code in a sandbox and returns captured output.
// Execution failures of any kind come back as a 200 with the failure
// folded into stderr; only an unsupported language or a malformed body
// produces a 400.
func (h *Handlers) Run(c *gin.Context) {
	var req exec.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.runner.Run(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, exec.ErrUnsupportedLanguage) {
			c.JSON(http.StatusBadRequest, exec.RunResult{
				Stdout: "",
				Stderr: "Unsupported language",
			})
			return
		}
		// Client went away or the request was cancelled mid-queue
		h.logger.Warn("Run aborted", zap.Error(err))
		c.JSON(http.StatusOK, exec.RunResult{
			Stdout: "",
			Stderr: "execution aborted: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}
