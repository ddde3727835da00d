package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"

	"cuahang/cuahang/controllers"
	"cuahang/cuahang/sources/psql/models"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memStore) PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func (m *memStore) GetObject(ctx context.Context, key string) (io.ReadCloser, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, "", errors.New("no such key")
	}
	return io.NopCloser(bytes.NewReader(data)), m.types[key], nil
}

func TestChatFileUploadAndDownload(t *testing.T) {
	r := chi.NewRouter()
	r.Mount("/files", FileRoutes(controllers.NewFilesController(newMemStore()), testCfg))
	token := tokenFor(t, models.User{ID: 3, Role: models.RoleCustomer})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "anh-san-pham.PNG")
	require.NoError(t, err)
	fw.Write([]byte("fake png bytes"))
	require.NoError(t, mw.Close())

	rec := do(t, r, http.MethodPost, "/files/upload/chat", token, body.String(), mw.FormDataContentType())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Success  bool   `json:"success"`
		FileName string `json:"fileName"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, strings.HasSuffix(resp.FileName, ".png"), resp.FileName)

	rec = do(t, r, http.MethodGet, "/files/chat/"+resp.FileName, token, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fake png bytes", rec.Body.String())

	rec = do(t, r, http.MethodGet, "/files/chat/not-a-upload.png", token, "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodGet, "/files/chat/00000000-0000-0000-0000-000000000000.png", token, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQRCodeGenerate(t *testing.T) {
	r := chi.NewRouter()
	r.Mount("/qrcode", QRCodeRoutes(controllers.NewQRController()))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/qrcode/generate?text=STK+0123456789&width=200&height=200", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp qrResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.NotEmpty(t, resp.QRCode)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/qrcode/generate", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func uploadPart(t *testing.T, h http.Handler, token, filename, partType string, data []byte) string {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	hdr.Set("Content-Type", partType)
	pw, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	pw.Write(data)
	require.NoError(t, mw.Close())

	rec := do(t, h, http.MethodPost, "/files/upload/chat", token, body.String(), mw.FormDataContentType())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		FileName string `json:"fileName"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.FileName
}

func TestChatFileDownload_DeclaredTypeIsNotTrusted(t *testing.T) {
	r := chi.NewRouter()
	r.Mount("/files", FileRoutes(controllers.NewFilesController(newMemStore()), testCfg))
	token := tokenFor(t, models.User{ID: 3, Role: models.RoleCustomer})

	name := uploadPart(t, r, token, "x.png", "text/html", []byte("<script>alert(1)</script>"))
	rec := do(t, r, http.MethodGet, "/files/chat/"+name+"?token="+token, "", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Disposition"), "attachment"))

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	name = uploadPart(t, r, token, "anh.png", "application/x-evil", png)
	rec = do(t, r, http.MethodGet, "/files/chat/"+name, token, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, rec.Header().Get("Content-Disposition"), "images render inline")
	assert.Equal(t, png, rec.Body.Bytes())
}
