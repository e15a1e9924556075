package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/sitedesk/sitedesk/internal/models"
	"github.com/sitedesk/sitedesk/internal/storage"
	apperrors "github.com/sitedesk/sitedesk/pkg/errors"
)

// UploadDocumentInput describes a file upload.
type UploadDocumentInput struct {
	Name      string
	FileType  string
	ProjectID *string
	Payload   io.Reader
}

// DocumentService manages document metadata and the backing object store.
type DocumentService struct {
	db       *gorm.DB
	store    *storage.LocalStore
	activity *ActivityService
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(db *gorm.DB, store *storage.LocalStore, activity *ActivityService) (*DocumentService, error) {
	if db == nil {
		return nil, errors.New("document service: db is required")
	}
	if store == nil {
		return nil, errors.New("document service: object store is required")
	}
	return &DocumentService{db: db, store: store, activity: activity}, nil
}

// Upload stores the payload and records its metadata.
func (s *DocumentService) Upload(ctx context.Context, actorID string, input UploadDocumentInput) (*models.Document, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("document name is required")
	}
	if input.Payload == nil {
		return nil, apperrors.NewBadRequest("document payload is required")
	}

	key, size, err := s.store.Save(name, input.Payload)
	if err != nil {
		return nil, fmt.Errorf("document service: store payload: %w", err)
	}

	document := models.Document{
		Name:       name,
		FilePath:   key,
		FileType:   defaultIfEmpty(strings.TrimSpace(input.FileType), "application/octet-stream"),
		FileSize:   size,
		ProjectID:  input.ProjectID,
		UploadedAt: time.Now().UTC(),
	}

	if err := s.db.WithContext(ctx).Create(&document).Error; err != nil {
		// Keep metadata and payload consistent.
		_ = s.store.Delete(key)
		return nil, fmt.Errorf("document service: create document: %w", err)
	}

	logActivity(ctx, s.activity, actorID, ActionCreated, "documents", document.ID,
		fmt.Sprintf("Document %q uploaded", document.Name), map[string]any{"file_size": size})

	return &document, nil
}

// List returns document metadata, newest first, optionally scoped to a project.
func (s *DocumentService) List(ctx context.Context, projectID string) ([]models.Document, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Order("uploaded_at DESC")
	if projectID = strings.TrimSpace(projectID); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}

	var documents []models.Document
	if err := query.Find(&documents).Error; err != nil {
		return nil, fmt.Errorf("document service: list documents: %w", err)
	}
	return documents, nil
}

// Get loads a single document's metadata.
func (s *DocumentService) Get(ctx context.Context, id string) (*models.Document, error) {
	ctx = ensureContext(ctx)

	var document models.Document
	if err := s.db.WithContext(ctx).First(&document, "id = ?", strings.TrimSpace(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("document service: load document: %w", err)
	}
	return &document, nil
}

// Download returns the document metadata and a reader over its payload.
// The caller closes the reader.
func (s *DocumentService) Download(ctx context.Context, id string) (*models.Document, io.ReadCloser, error) {
	document, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	reader, err := s.store.Open(document.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, apperrors.ErrNotFound
		}
		return nil, nil, fmt.Errorf("document service: open payload: %w", err)
	}
	return document, reader, nil
}

// Delete removes the metadata row and the stored payload.
func (s *DocumentService) Delete(ctx context.Context, actorID, id string) error {
	ctx = ensureContext(ctx)

	document, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(document).Error; err != nil {
		return fmt.Errorf("document service: delete document: %w", err)
	}
	if err := s.store.Delete(document.FilePath); err != nil {
		return fmt.Errorf("document service: delete payload: %w", err)
	}

	logActivity(ctx, s.activity, actorID, ActionDeleted, "documents", document.ID,
		fmt.Sprintf("Document %q deleted", document.Name), nil)
	return nil
}
