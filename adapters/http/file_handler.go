package http

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	fileUC "github.com/khoahotran/skillora/internal/application/usecase/file"
	"github.com/khoahotran/skillora/internal/domain/document"
	"github.com/khoahotran/skillora/pkg/apperror"
)

type FileHandler struct {
	fileUseCase *fileUC.FileUseCase
}

func NewFileHandler(uc *fileUC.FileUseCase) *FileHandler {
	return &FileHandler{fileUseCase: uc}
}

func (h *FileHandler) UploadFiles(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.Error(apperror.NewInvalidInput("multipart form with 'email' and 'files' is required", err))
		return
	}

	email := c.PostForm("email")
	if email == "" {
		c.Error(apperror.NewInvalidInput(document.ErrEmailRequired.Error(), document.ErrEmailRequired))
		return
	}
	if !ensureOwner(c, email) {
		return
	}

	headers := form.File["files"]
	if len(headers) > document.MaxFilesPerCall {
		c.Error(apperror.NewInvalidInput(document.ErrTooManyFiles.Error(), document.ErrTooManyFiles))
		return
	}

	files := make([]fileUC.UploadFile, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			c.Error(apperror.NewInternal("failed to open file", err))
			return
		}
		opened = append(opened, f)
		files = append(files, fileUC.UploadFile{Filename: fh.Filename, Size: fh.Size, Content: f})
	}

	stored, err := h.fileUseCase.Upload(c.Request.Context(), fileUC.UploadInput{Email: email, Files: files})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "folder": document.FolderForUser(email), "files": ToStoredFileDTOs(stored)})
}

func (h *FileHandler) DeleteFile(c *gin.Context) {
	userKey := c.Param("userKey")
	if !ensureOwner(c, userKey) {
		return
	}

	if err := h.fileUseCase.Delete(c.Request.Context(), userKey, c.Param("publicId")); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
