package file

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/skillora/internal/application/service"
	"github.com/khoahotran/skillora/internal/domain/document"
	"github.com/khoahotran/skillora/pkg/apperror"
	"github.com/khoahotran/skillora/pkg/logger"
)

type FileUseCase struct {
	uploader service.Uploader
	logger   logger.Logger
	now      func() time.Time
}

func NewFileUseCase(u service.Uploader, log logger.Logger) *FileUseCase {
	return &FileUseCase{uploader: u, logger: log, now: func() time.Time { return time.Now().UTC() }}
}

// UploadFile is one part of a multipart upload. Content must be rewindable
// because the type is sniffed before upload.
type UploadFile struct {
	Filename string
	Size     int64
	Content  io.ReadSeeker
}

type UploadInput struct {
	Email string
	Files []UploadFile
}

// Upload validates every file before sending any, then uploads them in
// order. A failed upload removes the files already stored by this call.
func (uc *FileUseCase) Upload(ctx context.Context, input UploadInput) ([]document.StoredFile, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, apperror.NewInvalidInput(document.ErrEmailRequired.Error(), document.ErrEmailRequired)
	}
	if len(input.Files) == 0 {
		return nil, apperror.NewInvalidInput("at least one file is required", nil)
	}
	if len(input.Files) > document.MaxFilesPerCall {
		return nil, apperror.NewInvalidInput(document.ErrTooManyFiles.Error(), document.ErrTooManyFiles)
	}

	mimes := make([]string, len(input.Files))
	for i, f := range input.Files {
		if err := document.CheckSize(f.Size); err != nil {
			return nil, apperror.NewInvalidInput(fmt.Sprintf("%s: %s", f.Filename, err), err)
		}
		mime, err := sniff(f.Content)
		if err != nil {
			return nil, apperror.NewInvalidInput(fmt.Sprintf("%s: cannot read file", f.Filename), err)
		}
		if err := document.CheckType(f.Filename, mime); err != nil {
			return nil, apperror.NewInvalidInput(fmt.Sprintf("%s: %s", f.Filename, err), err)
		}
		mimes[i] = mime
	}

	folder := document.FolderPath(email)
	l := uc.logger.With(zap.String("folder", folder))

	stored := make([]document.StoredFile, 0, len(input.Files))
	for i, f := range input.Files {
		now := uc.now()
		publicID := fmt.Sprintf("%s-%d-%s", document.PublicIDBase(f.Filename), now.UnixMilli(), uuid.NewString()[:8])

		url, err := uc.uploader.Upload(ctx, f.Content, folder, publicID)
		if err != nil {
			l.Error("Failed to upload file", err, zap.String("filename", f.Filename))
			uc.rollback(stored)
			return nil, apperror.NewInternal("failed to upload file", err)
		}
		stored = append(stored, document.StoredFile{
			Filename:   f.Filename,
			PublicID:   folder + "/" + publicID,
			URL:        url,
			MimeType:   mimes[i],
			Size:       f.Size,
			UploadedAt: now,
		})
	}

	l.Info("Files uploaded", zap.Int("count", len(stored)))
	return stored, nil
}

func sniff(r io.ReadSeeker) (string, error) {
	m, err := mimetype.DetectReader(r)
	if err != nil {
		return "", err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	mime := m.String()
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	return mime, nil
}

func (uc *FileUseCase) rollback(stored []document.StoredFile) {
	for _, f := range stored {
		go func(publicID string) {
			if err := uc.uploader.Delete(context.Background(), publicID); err != nil {
				uc.logger.Warn("Failed to roll back uploaded file", zap.String("public_id", publicID), zap.Error(err))
			}
		}(f.PublicID)
	}
}

// Delete removes publicID from the user's folder; ids outside it cannot
// be addressed.
func (uc *FileUseCase) Delete(ctx context.Context, email, publicID string) error {
	email = strings.TrimSpace(email)
	if email == "" || publicID == "" {
		return apperror.NewInvalidInput("'userKey' and 'publicId' are required", nil)
	}
	if strings.Contains(publicID, "/") || strings.Contains(publicID, "..") {
		return apperror.NewInvalidInput("invalid 'publicId'", nil)
	}

	fullID := document.FolderPath(email) + "/" + publicID
	if err := uc.uploader.Delete(ctx, fullID); err != nil {
		uc.logger.Error("Failed to delete file", err, zap.String("public_id", fullID))
		return apperror.NewInternal("failed to delete file", err)
	}
	uc.logger.Info("File deleted", zap.String("public_id", fullID))
	return nil
}
