// cuahang/controllers/qrcode.go
package controllers

import (
	"encoding/base64"

	"cuahang/cuahang/utils/apperr"

	"github.com/skip2/go-qrcode"
)

const (
	defaultQRSize = 300
	minQRSize     = 64
	maxQRSize     = 1024
)

// QRController renders payment QR codes for the checkout page.
type QRController struct{}

func NewQRController() *QRController {
	return &QRController{}
}

// Generate returns a base64 PNG QR code of text. The image is square; the
// smaller of width and height wins.
func (c *QRController) Generate(text string, width, height int) (string, error) {
	if text == "" {
		return "", apperr.InvalidArg("text is required")
	}
	size := defaultQRSize
	if width > 0 {
		size = width
	}
	if height > 0 && height < size {
		size = height
	}
	size = min(max(size, minQRSize), maxQRSize)

	png, err := qrcode.Encode(text, qrcode.Medium, size)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeInvalidArgument, "cannot encode text", err)
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
