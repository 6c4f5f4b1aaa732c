package document

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	MaxFileSize     = 10 << 20
	MaxFilesPerCall = 10
	rootFolder      = "skillora/uploads"
)

type StoredFile struct {
	Filename   string    `json:"filename"`
	PublicID   string    `json:"public_id"`
	URL        string    `json:"url"`
	MimeType   string    `json:"mime_type"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

var (
	ErrEmailRequired   = errors.New("user email is required for file upload")
	ErrFileTooLarge    = errors.New("file exceeds the 10MB limit")
	ErrTooManyFiles    = errors.New("at most 10 files per upload")
	ErrTypeNotAllowed  = errors.New("file type not allowed, only JPG, PNG, PDF and DOC files are permitted")
	folderUnsafeChars  = regexp.MustCompile(`[^a-z0-9]`)
	publicIDUnsafeChar = regexp.MustCompile(`[^A-Za-z0-9_-]`)
)

// allowedTypes maps each permitted extension to the MIME types accepted for it.
var allowedTypes = map[string][]string{
	".jpg":  {"image/jpeg"},
	".jpeg": {"image/jpeg"},
	".png":  {"image/png"},
	".pdf":  {"application/pdf"},
	".doc":  {"application/msword", "application/x-ole-storage"},
	".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip"},
}

// FolderForUser maps an email to its storage folder name: the lowercased
// local part with every character outside [a-z0-9] replaced by '_'.
func FolderForUser(email string) string {
	local := strings.ToLower(email)
	if i := strings.Index(local, "@"); i >= 0 {
		local = local[:i]
	}
	return folderUnsafeChars.ReplaceAllString(local, "_")
}

// FolderPath is the full storage folder for a user.
func FolderPath(email string) string {
	return rootFolder + "/" + FolderForUser(email)
}

// CheckType validates a file by its extension and its sniffed MIME type.
func CheckType(filename, mimeType string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	accepted, ok := allowedTypes[ext]
	if !ok {
		return ErrTypeNotAllowed
	}
	for _, m := range accepted {
		if m == mimeType {
			return nil
		}
	}
	return ErrTypeNotAllowed
}

func CheckSize(size int64) error {
	if size > MaxFileSize {
		return ErrFileTooLarge
	}
	return nil
}

// PublicIDBase returns the filename without extension, made safe for use
// in a storage public id.
func PublicIDBase(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = publicIDUnsafeChar.ReplaceAllString(base, "_")
	if base == "" {
		return "file"
	}
	return base
}
