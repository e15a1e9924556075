package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sitedesk/sitedesk/internal/middleware"
	"github.com/sitedesk/sitedesk/internal/services"
	"github.com/sitedesk/sitedesk/pkg/errors"
	"github.com/sitedesk/sitedesk/pkg/logger"
	"github.com/sitedesk/sitedesk/pkg/response"
)

const maxUploadBytes = 32 << 20

// DocumentHandler exposes document upload, listing and download endpoints.
type DocumentHandler struct {
	documents *services.DocumentService
}

// NewDocumentHandler constructs a DocumentHandler.
func NewDocumentHandler(documents *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// Upload accepts a multipart form with a `file` part and optional `name`
// and `project_id` fields.
func (h *DocumentHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, errors.NewBadRequest("file is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, errors.NewBadRequest("unable to read uploaded file"))
		return
	}
	defer file.Close()

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		name = fileHeader.Filename
	}

	var projectID *string
	if value := strings.TrimSpace(c.PostForm("project_id")); value != "" {
		projectID = &value
	}

	fileType := fileHeader.Header.Get("Content-Type")
	if fileType == "" {
		fileType = "application/octet-stream"
	}

	document, err := h.documents.Upload(requestContext(c), c.GetString(middleware.CtxUserIDKey), services.UploadDocumentInput{
		Name:      name,
		FileType:  fileType,
		ProjectID: projectID,
		Payload:   file,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, document)
}

// List returns document metadata, optionally scoped to a project.
func (h *DocumentHandler) List(c *gin.Context) {
	documents, err := h.documents.List(requestContext(c), c.Query("project_id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, documents)
}

// Download streams the stored payload back to the caller.
func (h *DocumentHandler) Download(c *gin.Context) {
	document, payload, err := h.documents.Download(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer payload.Close()

	filename := document.Name
	if filepath.Ext(filename) == "" {
		filename += filepath.Ext(document.FilePath)
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", document.FileType)
	if document.FileSize > 0 {
		c.Header("Content-Length", fmt.Sprintf("%d", document.FileSize))
	}
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, payload); err != nil {
		logger.WithModule("handlers").Warn("document stream interrupted")
	}
}

// Delete removes the document and its payload.
func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.documents.Delete(requestContext(c), c.GetString(middleware.CtxUserIDKey), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
