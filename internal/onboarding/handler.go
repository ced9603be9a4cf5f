package onboarding

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Page names recorded in the session marker
const (
	PageOnboarding = "onboarding"
	PageSuccess    = "success"
)

// MarkerStore records which page a client is on so a reload resumes there
type MarkerStore interface {
	TrackPage(ctx context.Context, clientID, page, accountType, email string) error
	Clear(ctx context.Context, clientID string) error
}

// Handler handles HTTP requests for the onboarding wizard
type Handler struct {
	manager *Manager
	markers MarkerStore
	logger  *zap.Logger
}

// NewHandler creates an onboarding handler. markers may be nil.
func NewHandler(manager *Manager, markers MarkerStore, logger *zap.Logger) *Handler {
	return &Handler{
		manager: manager,
		markers: markers,
		logger:  logger,
	}
}

// RegisterRoutes registers onboarding routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	onboarding := router.Group("/onboarding")
	{
		onboarding.GET("/steps", h.listSteps)

		onboarding.POST("/sessions", h.startSession)
		onboarding.GET("/sessions/:id", h.getSession)
		onboarding.DELETE("/sessions/:id", h.abandonSession)
		onboarding.POST("/sessions/:id/reset", h.resetSession)

		// Field edits
		onboarding.PUT("/sessions/:id/fields/:field", h.setScalar)
		onboarding.PUT("/sessions/:id/sets/:field", h.setMember)
		onboarding.POST("/sessions/:id/files/:field", h.uploadFile)
		onboarding.DELETE("/sessions/:id/files/:field", h.clearFile)
		onboarding.POST("/sessions/:id/certifications/:name/file", h.uploadCertificationFile)
		onboarding.DELETE("/sessions/:id/certifications/:name/file", h.clearCertificationFile)

		// Navigation
		onboarding.GET("/sessions/:id/validation", h.validateStep)
		onboarding.POST("/sessions/:id/continue", h.continueStep)
		onboarding.POST("/sessions/:id/back", h.backStep)
	}
}

type startSessionRequest struct {
	Role     string `json:"role" binding:"required"`
	Email    string `json:"email"`
	ClientID string `json:"client_id"`
}

type scalarRequest struct {
	Value string `json:"value"`
}

type memberRequest struct {
	Item     string `json:"item" binding:"required"`
	Included bool   `json:"included"`
}

// listSteps handles GET /api/v1/onboarding/steps?role=
func (h *Handler) listSteps(c *gin.Context) {
	role, err := ParseRole(c.Query("role"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": role, "steps": StepsFor(role)})
}

// startSession handles POST /api/v1/onboarding/sessions
func (h *Handler) startSession(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, err := ParseRole(req.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.manager.Start(role, req.Email, req.ClientID)
	if err != nil {
		h.logger.Error("Failed to start onboarding", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if h.markers != nil && req.ClientID != "" {
		if err := h.markers.TrackPage(c.Request.Context(), req.ClientID, PageOnboarding, string(role), req.Email); err != nil {
			h.logger.Warn("Failed to store session marker",
				zap.String("session_id", session.ID.String()),
				zap.Error(err))
		}
	}

	c.JSON(http.StatusCreated, session.View())
}

// getSession handles GET /api/v1/onboarding/sessions/:id
func (h *Handler) getSession(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, session.View())
}

// abandonSession handles DELETE /api/v1/onboarding/sessions/:id
func (h *Handler) abandonSession(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	session, err := h.manager.Abandon(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if h.markers != nil && session.ClientID != "" {
		if err := h.markers.Clear(c.Request.Context(), session.ClientID); err != nil {
			h.logger.Warn("Failed to clear session marker",
				zap.String("session_id", id.String()),
				zap.Error(err))
		}
	}

	c.Status(http.StatusNoContent)
}

// resetSession handles POST /api/v1/onboarding/sessions/:id/reset
func (h *Handler) resetSession(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	session, err := h.manager.Reset(id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, session.View())
}

// setScalar handles PUT /api/v1/onboarding/sessions/:id/fields/:field
func (h *Handler) setScalar(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req scalarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	field := Field(c.Param("field"))
	if err := session.Edit(func(form *FormState) error {
		return form.SetScalar(field, req.Value)
	}); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"field": field, "value": req.Value})
}

// setMember handles PUT /api/v1/onboarding/sessions/:id/sets/:field
func (h *Handler) setMember(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	field := Field(c.Param("field"))
	var members []string
	if err := session.Edit(func(form *FormState) error {
		if err := form.SetMember(field, req.Item, req.Included); err != nil {
			return err
		}
		members = form.Members(field)
		return nil
	}); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"field": field, "members": members})
}

// uploadFile handles POST /api/v1/onboarding/sessions/:id/files/:field.
// Only the file's metadata is kept as a handle.
func (h *Handler) uploadFile(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	ref, ok := h.captureFile(c)
	if !ok {
		return
	}

	field := Field(c.Param("field"))
	if err := session.Edit(func(form *FormState) error {
		return form.SetFile(field, ref)
	}); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ref)
}

// clearFile handles DELETE /api/v1/onboarding/sessions/:id/files/:field
func (h *Handler) clearFile(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	field := Field(c.Param("field"))
	if err := session.Edit(func(form *FormState) error {
		return form.SetFile(field, nil)
	}); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// uploadCertificationFile handles POST /api/v1/onboarding/sessions/:id/certifications/:name/file
func (h *Handler) uploadCertificationFile(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	ref, ok := h.captureFile(c)
	if !ok {
		return
	}

	name := c.Param("name")
	if err := session.Edit(func(form *FormState) error {
		return form.SetKeyedFile(FieldCertificationFiles, name, ref)
	}); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ref)
}

// clearCertificationFile handles DELETE /api/v1/onboarding/sessions/:id/certifications/:name/file
func (h *Handler) clearCertificationFile(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	name := c.Param("name")
	if err := session.Edit(func(form *FormState) error {
		return form.SetKeyedFile(FieldCertificationFiles, name, nil)
	}); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// validateStep handles GET /api/v1/onboarding/sessions/:id/validation
func (h *Handler) validateStep(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, session.Check())
}

// continueStep handles POST /api/v1/onboarding/sessions/:id/continue
func (h *Handler) continueStep(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	result, err := session.Continue(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	if result.Outcome == OutcomeBlocked {
		failure := result.Validation.Err()
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":          failure.Error(),
			"outcome":        result.Outcome,
			"step":           result.Step,
			"missing_fields": result.Validation.MissingFields,
		})
		return
	}

	body := gin.H{
		"outcome":  result.Outcome,
		"step":     result.Step,
		"progress": session.View().Progress,
	}
	if result.Outcome == OutcomeCompleted {
		body["next_page"] = PageSuccess
	}
	c.JSON(http.StatusOK, body)
}

// backStep handles POST /api/v1/onboarding/sessions/:id/back
func (h *Handler) backStep(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	result, err := session.Back()
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"outcome":  result.Outcome,
		"step":     result.Step,
		"progress": session.View().Progress,
	})
}

func (h *Handler) captureFile(c *gin.Context) (*FileRef, bool) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return nil, false
	}
	return NewFileRef(file.Filename, file.Size, file.Header.Get("Content-Type")), true
}

func (h *Handler) sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) session(c *gin.Context) (*Session, bool) {
	id, ok := h.sessionID(c)
	if !ok {
		return nil, false
	}
	session, err := h.manager.Get(id)
	if err != nil {
		h.writeError(c, err)
		return nil, false
	}
	return session, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var kindErr *FieldKindError
	switch {
	case errors.Is(err, ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrWizardCompleted), errors.Is(err, ErrSessionAbandoned):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrUnknownField), errors.Is(err, ErrSlotNotFound), errors.Is(err, ErrEmptyItem), errors.As(err, &kindErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Onboarding request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
