package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

var (
	// ErrUnsupportedType is returned for content outside the allowed document and image types
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrTooLarge is returned when the content exceeds the limit for its type
	ErrTooLarge = errors.New("file too large")
	// ErrEmpty is returned for zero-length uploads
	ErrEmpty = errors.New("file is empty")
)

var imageTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
}

var documentTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"text/csv",
}

var sniffWholeFile sync.Once

// Limits caps upload sizes in bytes
type Limits struct {
	MaxImageBytes int64
	MaxFileBytes  int64
}

// Storage keeps uploaded files on an afero filesystem
type Storage struct {
	fs     afero.Fs
	limits Limits
}

// Stored describes a saved file
type Stored struct {
	Path string `json:"path"`
	MIME string `json:"mime"`
	Size int64  `json:"size"`
}

// New wraps fs
func New(fs afero.Fs, limits Limits) *Storage {
	// office formats are zip containers whose marker entries may sit past the default read limit
	sniffWholeFile.Do(func() { mimetype.SetLimit(0) })
	return &Storage{fs: fs, limits: limits}
}

// NewLocal stores files below dir on the local disk
func NewLocal(dir string, limits Limits) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return New(afero.NewBasePathFs(afero.NewOsFs(), dir), limits), nil
}

// Dir returns the directory of a record's files: <table>/<tenant|system>/<id>
func Dir(table string, tenantID *uint, id any) string {
	owner := "system"
	if tenantID != nil {
		owner = strconv.FormatUint(uint64(*tenantID), 10)
	}
	return path.Join(table, owner, fmt.Sprint(id))
}

// Save sniffs the content of r, enforces type and size limits and writes it
// to dir as <field>-<uuid><ext>
func (s *Storage) Save(r io.Reader, dir, field string) (*Stored, error) {
	readLimit := s.limits.MaxFileBytes
	if s.limits.MaxImageBytes > readLimit {
		readLimit = s.limits.MaxImageBytes
	}

	data, err := io.ReadAll(io.LimitReader(r, readLimit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}

	mtype := mimetype.Detect(data)
	limit, ok := s.limitFor(mtype)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mtype.String())
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s files are limited to %d MB", ErrTooLarge, kind(mtype), limit>>20)
	}

	name := path.Join(dir, field+"-"+uuid.NewString()+mtype.Extension())
	if err := s.fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w, key: %s", err, name)
	}
	if err := afero.WriteFile(s.fs, name, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write file: %w, key: %s", err, name)
	}

	return &Stored{Path: name, MIME: baseType(mtype), Size: int64(len(data))}, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (s *Storage) Remove(name string) error {
	if name == "" {
		return nil
	}
	if err := s.fs.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove file: %w, key: %s", err, name)
	}
	return nil
}

func (s *Storage) limitFor(mtype *mimetype.MIME) (int64, bool) {
	for _, t := range imageTypes {
		if mtype.Is(t) {
			return s.limits.MaxImageBytes, true
		}
	}
	for _, t := range documentTypes {
		if mtype.Is(t) {
			return s.limits.MaxFileBytes, true
		}
	}
	return 0, false
}

func kind(mtype *mimetype.MIME) string {
	if strings.HasPrefix(mtype.String(), "image/") {
		return "image"
	}
	return "document"
}

func baseType(mtype *mimetype.MIME) string {
	t, _, _ := strings.Cut(mtype.String(), ";")
	return t
}
