package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/aescanero/tripplanner/pkg/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PlanRequest is the body of a plan request. Both JSON and form encodings
// are accepted.
type PlanRequest struct {
	Destination string `json:"destination" form:"destination"`
	Dates       string `json:"dates" form:"dates"`
	Budget      string `json:"budget" form:"budget"`
	Mood        string `json:"mood" form:"mood"`
}

func (r PlanRequest) toDomain() domain.Request {
	return domain.Request{
		Destination: r.Destination,
		Dates:       r.Dates,
		Budget:      r.Budget,
		Mood:        r.Mood,
	}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Error codes returned by the API
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeCredentialsMissing = "CREDENTIALS_MISSING"
	CodePlanFailed         = "PLAN_FAILED"
)

func abortWithError(c *gin.Context, status int, code, message string, details interface{}) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// handleHealth reports worker pool health and missing credentials
func (s *Server) handleHealth(c *gin.Context) {
	status := "healthy"
	code := http.StatusOK
	checks := gin.H{"orchestrator": "ok"}

	if s.health != nil {
		pool := s.health.GetStatus()
		checks["workers"] = pool
		if !pool.Healthy {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
	}

	if len(s.missing) > 0 {
		checks["credentials"] = gin.H{"missing": s.missing}
		if status == "healthy" {
			status = "degraded"
		}
	} else {
		checks["credentials"] = "ok"
	}

	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleLiveness answers liveness probes
func (s *Server) handleLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleExample returns the example request shown to new users
func (s *Server) handleExample(c *gin.Context) {
	c.JSON(http.StatusOK, domain.ExampleRequest())
}

// handleCreatePlan builds a plan for the submitted request
func (s *Server) handleCreatePlan(c *gin.Context) {
	if len(s.missing) > 0 {
		abortWithError(c, http.StatusServiceUnavailable, CodeCredentialsMissing,
			"required API keys are not configured", gin.H{"missing": s.missing})
		return
	}

	var body PlanRequest
	if err := c.ShouldBind(&body); err != nil {
		s.logger.Info("malformed plan request",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err))
		abortWithError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error(), nil)
		return
	}

	result, err := s.planner.Plan(c.Request.Context(), body.toDomain())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			abortWithError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error(), nil)
			return
		}
		s.logger.Error("failed to build plan",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, CodePlanFailed, "failed to build plan", nil)
		return
	}

	c.JSON(http.StatusOK, result)
}
