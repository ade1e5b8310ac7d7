package subjects

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"studyvault-backend/internal/quota"
	"studyvault-backend/internal/shared/server/middleware"
	"studyvault-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the subjects service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches subject routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/subjects", h.create)
	rg.GET("/subjects", h.list)
	rg.GET("/subjects/:subjectId", h.get)
	rg.PATCH("/subjects/:subjectId", h.rename)
	rg.DELETE("/subjects/:subjectId", h.remove)
}

type createSubjectRequest struct {
	Name string `json:"name"`
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req createSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	subject, err := h.Svc.Create(c.Request.Context(), userID, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, quota.ErrSubjectLimit):
			respond.Error(c, http.StatusConflict, "quota_exceeded", quota.MsgSubjectLimit, nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", ErrInvalidInput.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create subject", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, subject)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	subjects, err := h.Svc.List(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list subjects", nil)
		return
	}

	respond.OK(c, subjects)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	subject, err := h.Svc.Get(c.Request.Context(), userID, c.Param("subjectId"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", ErrNotFound.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch subject", nil)
		return
	}

	respond.OK(c, subject)
}

type renameSubjectRequest struct {
	Name string `json:"name"`
}

func (h *Handler) rename(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req renameSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	subject, err := h.Svc.Rename(c.Request.Context(), userID, c.Param("subjectId"), req.Name)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", ErrNotFound.Error(), nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", ErrInvalidInput.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to rename subject", nil)
		}
		return
	}

	respond.OK(c, subject)
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	err := h.Svc.Delete(c.Request.Context(), userID, c.Param("subjectId"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", ErrNotFound.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete subject", nil)
		}
		return
	}

	respond.OK(c, gin.H{"ok": true})
}
