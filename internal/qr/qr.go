// Package qr renders participant codes as QR images for the check-in
// scanners and the delivery emails.
package qr

import (
	"encoding/base64"
	"errors"

	qrcode "github.com/skip2/go-qrcode"
)

const defaultSize = 256

var ErrEmptyCode = errors.New("cannot encode an empty code")

// PNG renders the code as a PNG image. Size is in pixels per side; zero or
// negative falls back to the default.
func PNG(code string, size int) ([]byte, error) {
	if code == "" {
		return nil, ErrEmptyCode
	}
	if size <= 0 {
		size = defaultSize
	}
	return qrcode.Encode(code, qrcode.Medium, size)
}

// DataURI renders the code as a base64 PNG data URI, ready to inline into
// an <img> tag in the delivery email.
func DataURI(code string, size int) (string, error) {
	png, err := PNG(code, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
