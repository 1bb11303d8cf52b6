// Package qr reads bag QR codes out of camera frames and uploaded pictures,
// and renders bag labels.
package qr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	goqrcode "github.com/skip2/go-qrcode"
)

var (
	ErrNotFound     = errors.New("no qr code found in image")
	ErrInvalidImage = errors.New("unsupported or corrupt image")
	ErrEmptyPayload = errors.New("qr payload is empty")
)

// Decode returns the text carried by the first QR code found in the image.
func Decode(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return DecodeImage(img)
}

func DecodeImage(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	result, err := qrcode.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return "", ErrNotFound
	}

	payload := strings.TrimSpace(result.GetText())
	if payload == "" {
		return "", ErrEmptyPayload
	}
	return payload, nil
}

// Encode renders payload as a PNG QR code of size×size pixels.
func Encode(payload string, size int) ([]byte, error) {
	if strings.TrimSpace(payload) == "" {
		return nil, ErrEmptyPayload
	}
	if size <= 0 {
		size = 256
	}
	return goqrcode.Encode(payload, goqrcode.Medium, size)
}
