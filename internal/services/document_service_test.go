package services

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sitedesk/sitedesk/internal/database/testutil"
	"github.com/sitedesk/sitedesk/internal/storage"
	apperrors "github.com/sitedesk/sitedesk/pkg/errors"
)

func TestDocumentUploadDownloadDelete(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	svc, err := NewDocumentService(db, store, nil)
	require.NoError(t, err)
	ctx := context.Background()

	document, err := svc.Upload(ctx, "user-1", UploadDocumentInput{
		Name:     "site-plan.pdf",
		FileType: "application/pdf",
		Payload:  strings.NewReader("drawing"),
	})
	require.NoError(t, err)
	require.EqualValues(t, 7, document.FileSize)

	loaded, reader, err := svc.Download(ctx, document.ID)
	require.NoError(t, err)
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.NoError(t, reader.Close())
	require.Equal(t, "drawing", string(data))
	require.Equal(t, document.ID, loaded.ID)

	require.NoError(t, svc.Delete(ctx, "user-1", document.ID))
	_, err = svc.Get(ctx, document.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
