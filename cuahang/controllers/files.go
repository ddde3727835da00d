// cuahang/controllers/files.go
package controllers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"cuahang/cuahang/sources/storage"
	"cuahang/cuahang/utils/apperr"
	"cuahang/cuahang/utils/logging"
	"cuahang/cuahang/utils/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxChatUpload bounds a single chat attachment.
const MaxChatUpload = 10 << 20

const (
	chatPrefix = "chat/"
	sniffLen   = 512
)

// Attachment types served back with their own Content-Type. Anything else
// is stored and served as application/octet-stream.
var allowedTypes = map[string]bool{
	"image/png":       true,
	"image/jpeg":      true,
	"image/gif":       true,
	"image/webp":      true,
	"image/bmp":       true,
	"application/pdf": true,
	"application/zip": true,
	"audio/mpeg":      true,
	"video/mp4":       true,
	"video/webm":      true,
}

// SafeContentType maps a sniffed or stored type onto the allow-list.
func SafeContentType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !allowedTypes[mediaType] {
		return "application/octet-stream"
	}
	return mediaType
}

// Inline reports whether a browser may render the type in place.
func Inline(contentType string) bool {
	return strings.HasPrefix(SafeContentType(contentType), "image/")
}

var objectName = regexp.MustCompile(`^[0-9a-f-]{36}(\.[A-Za-z0-9]{1,10})?$`)

// FilesController stores chat attachments in object storage.
type FilesController struct {
	store storage.ObjectStore
}

func NewFilesController(store storage.ObjectStore) *FilesController {
	return &FilesController{store: store}
}

// UploadChatFile stores the file under a random name and returns that name,
// which clients then send as the message fileUrl.
func (c *FilesController) UploadChatFile(ctx context.Context, userID int, original string, r io.Reader, size int64) (types.UploadResponse, error) {
	if size <= 0 {
		return types.UploadResponse{}, apperr.InvalidArg("empty file")
	}
	if size > MaxChatUpload {
		return types.UploadResponse{}, apperr.InvalidArg("file too large")
	}
	ext := strings.ToLower(filepath.Ext(original))
	if len(ext) > 11 {
		ext = ""
	}
	name := uuid.New().String() + ext

	// The client-declared type is ignored; the stored type comes from the bytes.
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return types.UploadResponse{}, apperr.Wrap(apperr.CodeInvalidArgument, "cannot read file", err)
	}
	contentType := SafeContentType(http.DetectContentType(head[:n]))
	body := io.MultiReader(bytes.NewReader(head[:n]), r)

	if err := c.store.PutObject(ctx, chatPrefix+name, body, size, contentType); err != nil {
		return types.UploadResponse{}, err
	}
	logging.AppLogger.Info("chat file uploaded",
		zap.Int("user_id", userID), zap.String("object", name), zap.Int64("size", size))
	return types.UploadResponse{Success: true, FileName: name}, nil
}

// OpenChatFile returns a stored attachment by the name UploadChatFile gave it.
func (c *FilesController) OpenChatFile(ctx context.Context, name string) (io.ReadCloser, string, error) {
	name = path.Base(name)
	if !objectName.MatchString(name) {
		return nil, "", apperr.InvalidArg("invalid file name")
	}
	body, contentType, err := c.store.GetObject(ctx, chatPrefix+name)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.CodeNotFound, "file not found", err)
	}
	return body, SafeContentType(contentType), nil
}
