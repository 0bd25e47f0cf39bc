package handler

import (
	"errors"
	"os"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/college-notes-api/pkg/errors"
	"github.com/noah-isme/college-notes-api/pkg/response"
	"github.com/noah-isme/college-notes-api/pkg/storage"
)

type fileTokenParser interface {
	Parse(token string) (string, time.Time, error)
}

type fileLocator interface {
	Path(key string) string
}

// FileHandler serves locally stored uploads addressed by signed tokens.
type FileHandler struct {
	signer fileTokenParser
	files  fileLocator
}

// NewFileHandler constructs a file handler.
func NewFileHandler(signer fileTokenParser, files fileLocator) *FileHandler {
	return &FileHandler{signer: signer, files: files}
}

// Serve godoc
// @Summary Fetch a stored file by signed token
// @Tags Files
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /files/{token} [get]
func (h *FileHandler) Serve(c *gin.Context) {
	token := strings.TrimPrefix(c.Param("token"), "/")
	key, _, err := h.signer.Parse(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "file link expired"))
			return
		}
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "file not found"))
		return
	}

	fullPath := h.files.Path(key)
	info, err := os.Stat(fullPath)
	if err != nil || info.IsDir() {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "file not found"))
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.FileAttachment(fullPath, path.Base(key))
}
