package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/timmy/memerator/internal/api/middleware"
	"github.com/timmy/memerator/internal/logger"
	"github.com/timmy/memerator/internal/service"
)

// AdminHandler handles admin operations.
type AdminHandler struct {
	templateService *service.TemplateService
	authService     *service.AuthService

	// Seed run state
	mu            sync.RWMutex
	isRunning     bool
	lastResult    *service.SeedResult
	lastRunTime   time.Time
	lastRunStatus string
}

// NewAdminHandler creates a new admin handler.
// Parameters:
//   - templateService: template catalog service.
//   - authService: auth service used for credit changes.
// Returns:
//   - *AdminHandler: initialized handler.
func NewAdminHandler(templateService *service.TemplateService, authService *service.AuthService) *AdminHandler {
	return &AdminHandler{
		templateService: templateService,
		authService:     authService,
	}
}

// SeedRequest represents the template seed API request.
type SeedRequest struct {
	Force bool `json:"force"`
}

// SeedResponse represents the template seed API response.
type SeedResponse struct {
	Message string              `json:"message"`
	Result  *service.SeedResult `json:"result,omitempty"`
}

// SeedStatusResponse represents the last seed run.
type SeedStatusResponse struct {
	IsRunning     bool                `json:"is_running"`
	LastRunTime   string              `json:"last_run_time,omitempty"`
	LastRunStatus string              `json:"last_run_status,omitempty"`
	LastResult    *service.SeedResult `json:"last_result,omitempty"`
}

// CreditsRequest sets a user's credit balance.
type CreditsRequest struct {
	Credits *int `json:"credits" binding:"required"`
}

// SeedTemplates fetches the template catalog. Admins only.
// POST /api/v1/admin/templates/seed
func (h *AdminHandler) SeedTemplates(c *gin.Context) {
	ctx := c.Request.Context()
	if err := service.RequireAdmin(middleware.CurrentUser(c)); err != nil {
		respondError(c, err)
		return
	}

	var req SeedRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}

	h.mu.Lock()
	if h.isRunning {
		h.mu.Unlock()
		logger.CtxWarn(ctx, "Seed request rejected: already running, client_ip=%s", c.ClientIP())
		c.JSON(http.StatusConflict, gin.H{"error": "Template seeding is already running"})
		return
	}
	h.isRunning = true
	h.mu.Unlock()

	logger.CtxInfo(ctx, "Starting template seed: force=%v", req.Force)

	// Finish the run even if the client disconnects
	seedCtx := context.WithoutCancel(ctx)
	startTime := time.Now()
	result, err := h.templateService.Seed(seedCtx, req.Force)
	duration := time.Since(startTime)

	h.mu.Lock()
	h.isRunning = false
	h.lastRunTime = time.Now()
	if err != nil {
		h.lastRunStatus = "failed: " + err.Error()
	} else {
		h.lastRunStatus = "success"
		h.lastResult = result
	}
	h.mu.Unlock()

	if err != nil {
		logger.With(logger.Fields{
			logger.FieldDurationMs: duration.Milliseconds(),
		}).Error(ctx, "Template seed failed: force=%v, error=%v", req.Force, err)
		respondError(c, err)
		return
	}

	logger.With(logger.Fields{
		logger.FieldDurationMs: duration.Milliseconds(),
		logger.FieldCount:      result.Stored,
	}).Info(ctx, "Template seed completed: fetched=%d, stored=%d, total=%d",
		result.Fetched, result.Stored, result.Total)

	c.JSON(http.StatusOK, SeedResponse{
		Message: "Template seed completed",
		Result:  result,
	})
}

// GetSeedStatus reports the last seed run. Admins only.
// GET /api/v1/admin/templates/status
func (h *AdminHandler) GetSeedStatus(c *gin.Context) {
	if err := service.RequireAdmin(middleware.CurrentUser(c)); err != nil {
		respondError(c, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	resp := SeedStatusResponse{
		IsRunning:     h.isRunning,
		LastRunStatus: h.lastRunStatus,
		LastResult:    h.lastResult,
	}
	if !h.lastRunTime.IsZero() {
		resp.LastRunTime = h.lastRunTime.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, resp)
}

// SetCredits changes a user's credit balance. Admins only.
// PUT /api/v1/admin/users/:id/credits
func (h *AdminHandler) SetCredits(c *gin.Context) {
	caller := middleware.CurrentUser(c)
	if err := service.RequireAdmin(caller); err != nil {
		respondError(c, err)
		return
	}

	var req CreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.authService.SetCredits(c.Request.Context(), caller, c.Param("id"), *req.Credits)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
