// Package ocr recognizes text in raster images extracted from scanned
// pages.
//
// It wraps the Tesseract engine via gosseract and requires Tesseract to
// be installed on the system (brew install tesseract, or
// apt-get install tesseract-ocr).
package ocr

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/tsawler/vellum/reader"
)

// Client wraps a Tesseract session.
type Client struct {
	client *gosseract.Client
}

// New creates an OCR client. Close it to release engine resources.
func New() (*Client, error) {
	return &Client{client: gosseract.NewClient()}, nil
}

// Close releases OCR resources.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// SetLanguage selects the recognition language(s), "+"-separated for
// multiple (e.g. "eng+fra"). The engine default is English.
func (c *Client) SetLanguage(lang string) error {
	return c.client.SetLanguage(lang)
}

// RecognizeImage runs OCR over encoded image bytes (PNG, JPEG, TIFF) and
// returns the trimmed text.
func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// RecognizePageImage converts an extracted page image to PNG and runs OCR
// over it.
func (c *Client) RecognizePageImage(img *reader.PageImage) (string, error) {
	pngData, err := img.ToPNG()
	if err != nil {
		return "", fmt.Errorf("convert %s to PNG: %w", img.Name, err)
	}
	return c.RecognizeImage(pngData)
}
