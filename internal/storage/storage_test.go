package storage

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func newMemStorage(limits Limits) (*Storage, afero.Fs) {
	fs := afero.NewMemMapFs()
	return New(fs, limits), fs
}

func TestDir(t *testing.T) {
	tenantID := uint(4)
	assert.Equal(t, "vehicles/4/12", Dir("vehicles", &tenantID, uint(12)))
	assert.Equal(t, "tenants/system/3", Dir("tenants", nil, 3))
}

func TestSaveImage(t *testing.T) {
	s, fs := newMemStorage(Limits{MaxImageBytes: 1 << 20, MaxFileBytes: 1 << 20})

	stored, err := s.Save(bytes.NewReader(pngHeader), "vehicles/4/12", "photo")
	require.NoError(t, err)

	assert.Equal(t, "image/png", stored.MIME)
	assert.Equal(t, int64(len(pngHeader)), stored.Size)
	assert.Regexp(t, `^vehicles/4/12/photo-[0-9a-f-]{36}\.png$`, stored.Path)

	data, err := afero.ReadFile(fs, stored.Path)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
}

func TestSaveDocuments(t *testing.T) {
	s, _ := newMemStorage(Limits{MaxImageBytes: 1 << 20, MaxFileBytes: 1 << 20})

	tests := []struct {
		name    string
		content []byte
		mime    string
		ext     string
	}{
		{"pdf", []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n"), "application/pdf", ".pdf"},
		{"csv", []byte("code,name\nA,Alpha\nB,Beta\n"), "text/csv", ".csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored, err := s.Save(bytes.NewReader(tt.content), "kyc_records/1/9", "document_front")
			require.NoError(t, err)
			assert.Equal(t, tt.mime, stored.MIME)
			assert.Contains(t, stored.Path, tt.ext)
		})
	}
}

func TestSaveRejects(t *testing.T) {
	s, _ := newMemStorage(Limits{MaxImageBytes: 16, MaxFileBytes: 1024})

	_, err := s.Save(bytes.NewReader(pngHeader), "vehicles/1/1", "photo")
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = s.Save(bytes.NewReader([]byte("just some words")), "vehicles/1/1", "photo")
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = s.Save(bytes.NewReader(nil), "vehicles/1/1", "photo")
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestRemove(t *testing.T) {
	s, fs := newMemStorage(Limits{MaxImageBytes: 1 << 20, MaxFileBytes: 1 << 20})

	stored, err := s.Save(bytes.NewReader(pngHeader), "users/system/1", "photo")
	require.NoError(t, err)

	require.NoError(t, s.Remove(stored.Path))
	exists, err := afero.Exists(fs, stored.Path)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, s.Remove(stored.Path))
	assert.NoError(t, s.Remove(""))
}
