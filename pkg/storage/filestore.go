package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Category scopes stored keys by what was uploaded.
type Category string

const (
	CategoryNotes     Category = "notes"
	CategoryQuestions Category = "questions"
	CategoryAvatars   Category = "avatars"
)

const sniffLen = 3072

// Container formats that office documents sniff as. When detection lands on
// one of these, a declared type built on the same container is trusted instead.
// Anything sniffed as plain octet-stream is rejected.
var containerTypes = []string{"application/zip", "application/x-ole-storage"}

// Upload is one incoming file.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Descriptor is returned for every stored file.
type Descriptor struct {
	URL      string `json:"url"`
	Key      string `json:"filename"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}

// FileStoreConfig limits what Put accepts.
type FileStoreConfig struct {
	MaxSize      int64
	AllowedMIMEs []string
}

// FileStore filters uploads by size and type and stores them under
// category scoped, collision resistant keys.
type FileStore struct {
	backend Backend
	maxSize int64
	allowed []string
	logger  *zap.Logger
}

// NewFileStore wraps a backend with upload filtering.
func NewFileStore(backend Backend, cfg FileStoreConfig, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	allowed := make([]string, 0, len(cfg.AllowedMIMEs))
	for _, m := range cfg.AllowedMIMEs {
		allowed = append(allowed, strings.ToLower(strings.TrimSpace(m)))
	}
	return &FileStore{backend: backend, maxSize: cfg.MaxSize, allowed: allowed, logger: logger}
}

// Put validates and stores an upload. Nothing is left behind on failure.
func (s *FileStore) Put(ctx context.Context, category Category, upload Upload) (*Descriptor, error) {
	if upload.Reader == nil {
		return nil, ErrEmptyFile
	}
	if s.maxSize > 0 && upload.Size > s.maxSize {
		return nil, ErrFileTooLarge
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(upload.Reader, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if n == 0 {
		return nil, ErrEmptyFile
	}
	head = head[:n]

	mimeType, ok := s.resolveType(mimetype.Detect(head), upload.ContentType)
	if !ok {
		return nil, ErrUnsupportedType
	}

	var body io.Reader = io.MultiReader(bytes.NewReader(head), upload.Reader)
	if s.maxSize > 0 {
		body = io.LimitReader(body, s.maxSize+1)
	}

	key := buildKey(category, upload.Filename)
	size, err := s.backend.Put(ctx, key, body, mimeType)
	if err != nil {
		return nil, err
	}
	if s.maxSize > 0 && size > s.maxSize {
		if delErr := s.backend.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to remove oversized upload", zap.String("key", key), zap.Error(delErr))
		}
		return nil, ErrFileTooLarge
	}

	url, err := s.backend.URL(key)
	if err != nil {
		_ = s.backend.Delete(ctx, key)
		return nil, fmt.Errorf("build file url: %w", err)
	}

	return &Descriptor{URL: url, Key: key, Size: size, MimeType: mimeType}, nil
}

// Open streams a stored file.
func (s *FileStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.backend.Open(ctx, key)
}

// Delete removes a stored file. A missing file is not an error.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := s.backend.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

// URL re-derives the public address of a key, refreshing signed links.
func (s *FileStore) URL(key string) (string, error) {
	return s.backend.URL(key)
}

func (s *FileStore) resolveType(detected *mimetype.MIME, declared string) (string, bool) {
	if len(s.allowed) == 0 {
		return detected.String(), true
	}
	for _, allowed := range s.allowed {
		if detected.Is(allowed) {
			return allowed, true
		}
	}

	container := containerOf(detected)
	if container == "" {
		return "", false
	}
	declared = strings.ToLower(strings.TrimSpace(strings.SplitN(declared, ";", 2)[0]))
	for _, allowed := range s.allowed {
		if declared == allowed && containerOf(mimetype.Lookup(declared)) == container {
			return allowed, true
		}
	}
	return "", false
}

// containerOf returns the container format m is built on, or "" when m is
// not a zip or OLE based type.
func containerOf(m *mimetype.MIME) string {
	for ; m != nil; m = m.Parent() {
		for _, c := range containerTypes {
			if m.Is(c) {
				return c
			}
		}
	}
	return ""
}

// buildKey keeps a short alphanumeric extension from the client name and
// discards everything else it supplied.
func buildKey(category Category, filename string) string {
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(filename, "\\", "/")))
	if len(ext) < 2 || len(ext) > 10 || strings.IndexFunc(ext[1:], func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) >= 0 {
		ext = ""
	}
	return fmt.Sprintf("%s/%s%s", category, uuid.NewString(), ext)
}
