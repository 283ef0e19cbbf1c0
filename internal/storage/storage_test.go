package storage

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadHeader(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, "/", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	headers := req.MultipartForm.File["file"]
	require.Len(t, headers, 1)
	return headers[0]
}

func TestLocalStorageSaveFile(t *testing.T) {
	dir := t.TempDir()
	ls := NewLocalStorage(dir)

	src, err := ls.SaveFile(uploadHeader(t, "promo.png", "not-really-a-png"), "promo.png")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(src, ".png"), "extension survives: %s", src)

	saved, err := os.ReadFile(filepath.Join(dir, filepath.Base(src)))
	require.NoError(t, err)
	assert.Equal(t, "not-really-a-png", string(saved))
}

func TestObjectNameRandomizesBase(t *testing.T) {
	a := objectName("promo.MP4")
	b := objectName("promo.MP4")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, ".mp4"))
}

func TestGetContentType(t *testing.T) {
	assert.Equal(t, "image/png", getContentType("x.png"))
	assert.Equal(t, "video/mp4", getContentType("x.mp4"))
	assert.Equal(t, "application/octet-stream", getContentType("x.bin"))
}
