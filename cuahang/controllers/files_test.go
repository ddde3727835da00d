package controllers

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedObject struct {
	key, contentType string
	data             []byte
}

type captureStore struct {
	last capturedObject
}

func (s *captureStore) PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.last = capturedObject{key: key, contentType: contentType, data: data}
	return nil
}

func (s *captureStore) GetObject(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if key != s.last.key {
		return nil, "", errors.New("missing")
	}
	// Objects written before sniffing was added may carry any type.
	return io.NopCloser(strings.NewReader(string(s.last.data))), "text/html; charset=utf-8", nil
}

func TestUploadChatFile_StoresSniffedType(t *testing.T) {
	store := &captureStore{}
	ctrl := NewFilesController(store)
	html := "<html><script>alert(1)</script></html>"

	resp, err := ctrl.UploadChatFile(context.Background(), 1, "x.png", strings.NewReader(html), int64(len(html)))
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "application/octet-stream", store.last.contentType)
	assert.Equal(t, html, string(store.last.data), "sniffed bytes are not lost")

	body, contentType, err := ctrl.OpenChatFile(context.Background(), resp.FileName)
	require.NoError(t, err)
	defer body.Close()
	assert.Equal(t, "application/octet-stream", contentType)
}

func TestSafeContentType(t *testing.T) {
	assert.Equal(t, "image/png", SafeContentType("image/png"))
	assert.Equal(t, "application/pdf", SafeContentType("application/pdf"))
	assert.Equal(t, "application/octet-stream", SafeContentType("text/html; charset=utf-8"))
	assert.Equal(t, "application/octet-stream", SafeContentType("image/svg+xml"))
	assert.Equal(t, "application/octet-stream", SafeContentType(""))
	assert.True(t, Inline("image/jpeg"))
	assert.False(t, Inline("application/pdf"))
}
