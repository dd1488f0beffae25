// Package vinscan extracts a VIN from a photographed label by proxying the
// image to an external text-detection service and matching the detected text
// against the VIN pattern.
package vinscan

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/fleetyard/fleetyard/internal/errs"
)

// VIN pattern: 17 characters, letters I, O, and Q excluded. vinInText finds a
// VIN inside free OCR text; vinExact validates caller-supplied VINs.
var (
	vinInText = regexp.MustCompile(`\b([A-HJ-NPR-Z0-9]{17})\b`)
	vinExact  = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)
)

// ValidVIN reports whether s is a well-formed 17-character VIN.
func ValidVIN(s string) bool {
	return vinExact.MatchString(s)
}

// FindVIN returns the first VIN-shaped token in free text.
func FindVIN(text string) (string, bool) {
	m := vinInText.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Client talks to the external text-detection service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// detectResponse is the shape the text-detection service answers with.
type detectResponse struct {
	Text  string `json:"text"`
	Error string `json:"error"`
}

// DetectText sends the image to the text-detection service and returns the
// full detected text. A NotFound error means the service saw no text at all;
// any other non-success is an UpstreamError.
func (c *Client) DetectText(ctx context.Context, image []byte) (string, error) {
	if c.BaseURL == "" {
		return "", errs.Upstream("text-detection", fmt.Errorf("service URL not configured"))
	}

	payload, err := json.Marshal(map[string]string{
		"imageData": base64.StdEncoding.EncodeToString(image),
	})
	if err != nil {
		return "", errs.Upstream("text-detection", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return "", errs.Upstream("text-detection", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", errs.Upstream("text-detection", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", errs.NotFound("text", "image")
	}
	if resp.StatusCode != http.StatusOK {
		return "", errs.Upstream("text-detection", fmt.Errorf("status %d", resp.StatusCode))
	}

	var out detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errs.Upstream("text-detection", fmt.Errorf("unparsable response: %w", err))
	}
	if strings.TrimSpace(out.Text) == "" {
		return "", errs.NotFound("text", "image")
	}
	return out.Text, nil
}

// ExtractVIN runs text detection on the image and picks the VIN out of the
// result. NotFound distinguishes "no text in image" from "text but no VIN"
// only in the message; callers treat both as not found.
func (c *Client) ExtractVIN(ctx context.Context, image []byte) (string, error) {
	text, err := c.DetectText(ctx, image)
	if err != nil {
		return "", err
	}
	vin, ok := FindVIN(text)
	if !ok {
		return "", errs.NotFound("vin", "image")
	}
	return vin, nil
}
