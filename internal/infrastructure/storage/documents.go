package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/medbuddy/second-opinion-api/internal/core/domain"
)

const maxDocumentSize = 10 << 20 // 10MB per file

var ErrFileTooLarge = errors.New("document exceeds size limit")
var ErrFileTypeNotAllowed = errors.New("only images, PDFs, and documents are allowed")

// allowedExtensions mirrors the upload policy of the platform front door.
var allowedExtensions = map[string]struct{}{
	".jpeg": {}, ".jpg": {}, ".png": {}, ".pdf": {}, ".doc": {}, ".docx": {},
}

// DocumentStore saves uploaded case documents to local disk. Stored files get
// a server-assigned name so user-supplied names never touch the filesystem
// layout.
type DocumentStore struct {
	dir string
}

// NewDocumentStore ensures dir exists and returns a store rooted there.
func NewDocumentStore(dir string) (*DocumentStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DocumentStore{dir: dir}, nil
}

// Dir returns the root directory documents are stored under.
func (s *DocumentStore) Dir() string { return s.dir }

// Save validates and persists one uploaded file, returning its document
// reference.
func (s *DocumentStore) Save(fh *multipart.FileHeader) (domain.Document, error) {
	if fh.Size > maxDocumentSize {
		return domain.Document{}, ErrFileTooLarge
	}

	original := filepath.Base(fh.Filename)
	ext := strings.ToLower(filepath.Ext(original))
	if _, ok := allowedExtensions[ext]; !ok {
		return domain.Document{}, ErrFileTypeNotAllowed
	}

	src, err := fh.Open()
	if err != nil {
		return domain.Document{}, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := fmt.Sprintf("%d-%s", time.Now().UnixNano(), original)
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("create document file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(src, maxDocumentSize)); err != nil {
		os.Remove(path)
		return domain.Document{}, fmt.Errorf("write document: %w", err)
	}

	return domain.Document{
		Filename:     name,
		OriginalName: original,
		StoragePath:  path,
	}, nil
}
