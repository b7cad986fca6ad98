//go:build ocr

package ocr

import (
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// Client wraps Tesseract for OCR operations. A Client serialises its calls,
// so one instance may be shared between goroutines.
type Client struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// New creates a new OCR client set up for single-line English cells.
// The client should be closed when no longer needed to release resources.
func New() (*Client, error) {
	c := &Client{client: gosseract.NewClient()}
	if err := c.SetLanguage(DefaultLanguage); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := c.SetPageSegMode(PSM_SINGLE_LINE); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	return c, nil
}

// Close releases OCR resources.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.client.Close()
	c.client = nil
	return err
}

// Recognize encodes img as PNG and returns the recognized text.
func (c *Client) Recognize(img image.Image) (string, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return "", err
	}
	return c.RecognizeImage(data)
}

// RecognizeImage performs OCR on image data (PNG, TIFF, JPEG, etc.).
// Returns the recognized text with leading/trailing whitespace trimmed.
func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}

	return strings.TrimSpace(text), nil
}

// SetLanguage sets the language(s) for OCR recognition.
// Multiple languages can be specified as a "+" separated string (e.g., "eng+fra").
func (c *Client) SetLanguage(lang string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client.SetLanguage(strings.Split(lang, "+")...)
}

// SetPageSegMode sets the page segmentation mode.
func (c *Client) SetPageSegMode(mode PageSegMode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client.SetPageSegMode(gosseract.PageSegMode(mode))
}
