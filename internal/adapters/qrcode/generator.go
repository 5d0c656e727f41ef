package qrcode

import (
	"encoding/base64"
	"errors"
	"fmt"

	qr "github.com/skip2/go-qrcode"

	"seminarrsvp/internal/domain"
)

const (
	dataURLPrefix = "data:image/png;base64,"
	defaultSize   = 256
)

type pngGenerator struct {
	size int
}

// NewGenerator returns a QRGenerator producing size x size PNG data URLs at medium error correction.
func NewGenerator(size int) domain.QRGenerator {
	if size <= 0 {
		size = defaultSize
	}
	return &pngGenerator{size: size}
}

func (g *pngGenerator) Generate(content string) (string, error) {
	if content == "" {
		return "", errors.New("qr content is empty")
	}
	png, err := qr.Encode(content, qr.Medium, g.size)
	if err != nil {
		return "", fmt.Errorf("encode qr code: %w", err)
	}
	return dataURLPrefix + base64.StdEncoding.EncodeToString(png), nil
}
