package documents

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"studyvault-backend/internal/quota"
	"studyvault-backend/internal/shared/server/middleware"
	"studyvault-backend/internal/shared/server/respond"
	"studyvault-backend/internal/shared/util"
)

// Multipart overhead on top of the file size ceiling.
const maxRequestSize = quota.MaxFileSizeBytes + 1<<20

// Handler wires HTTP handlers to the documents service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes under a subject.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/subjects/:subjectId/documents", h.upload)
	rg.GET("/subjects/:subjectId/documents", h.list)
	rg.GET("/subjects/:subjectId/documents/:documentId", h.get)
	rg.GET("/subjects/:subjectId/documents/:documentId/download", h.download)
	rg.DELETE("/subjects/:subjectId/documents/:documentId", h.remove)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	subjectID := c.Param("subjectId")
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	// Reject on the declared size and type before touching the store. The
	// declared type is advisory; an unspecified or generic declaration is
	// deferred to the post-save sniff rather than rejected here.
	declaredType := fileHeader.Header.Get("Content-Type")
	var violations []string
	if declaredType != "" && !strings.HasPrefix(declaredType, "application/octet-stream") {
		violations = quota.ValidateUpload(declaredType, fileHeader.Size)
	} else if fileHeader.Size > quota.MaxFileSizeBytes {
		violations = []string{quota.MsgFileSize}
	}
	if len(violations) > 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", strings.Join(violations, "; "), gin.H{
			"violations": violations,
			"fileSize":   util.FormatFileSize(fileHeader.Size),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		name = fileHeader.Filename
	}
	topic := c.PostForm("topic")

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	doc, err := h.Svc.Upload(ctx, userID, subjectID, name, topic, fileHeader.Filename, file)
	if err != nil {
		var rejected FileRejectedError
		switch {
		case errors.As(err, &rejected):
			respond.Error(c, http.StatusBadRequest, "validation_error", rejected.Error(), gin.H{
				"violations": rejected.Violations,
				"fileSize":   util.FormatFileSize(fileHeader.Size),
			})
		case errors.Is(err, quota.ErrDocumentLimit):
			respond.Error(c, http.StatusConflict, "quota_exceeded", quota.MsgDocumentLimit, nil)
		case errors.Is(err, ErrSubjectNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "subject not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to upload document", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, ToResponse(doc))
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	subjectID := c.Param("subjectId")

	docs, err := h.Svc.List(c.Request.Context(), userID, subjectID)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
		return
	}

	respond.OK(c, ToResponses(docs))
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	doc, err := h.Svc.Get(c.Request.Context(), userID, c.Param("subjectId"), c.Param("documentId"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch document", nil)
		}
		return
	}

	respond.OK(c, ToResponse(doc))
}

func (h *Handler) download(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	doc, body, err := h.Svc.Open(c.Request.Context(), userID, c.Param("subjectId"), c.Param("documentId"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to open document", nil)
		}
		return
	}
	defer body.Close()

	c.Header("Content-Type", doc.MimeType)
	c.Header("Content-Disposition", `attachment; filename="`+doc.Name+`"`)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, body); err != nil {
		// Headers are already out; nothing useful left to send.
		_ = c.Error(err)
	}
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	err := h.Svc.Delete(c.Request.Context(), userID, c.Param("subjectId"), c.Param("documentId"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete document", nil)
		}
		return
	}

	respond.OK(c, gin.H{"ok": true})
}
