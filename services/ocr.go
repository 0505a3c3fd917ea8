package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"document-intel-platform/internal/config"
)

// OCRBackend recognizes text in a single page image. A local engine and a
// remote recognition API are interchangeable behind this contract.
type OCRBackend interface {
	Recognize(ctx context.Context, png []byte) (string, error)
}

// NewOCRBackend creates the backend selected by configuration.
func NewOCRBackend(cfg *config.Config) (OCRBackend, error) {
	switch cfg.OCRProvider {
	case "remote":
		return NewRemoteOCRClient(cfg), nil
	case "tesseract":
		return NewTesseractEngine()
	default:
		return nil, fmt.Errorf("unknown OCR provider %q", cfg.OCRProvider)
	}
}

// RemoteOCRClient talks to a cloud recognition API that accepts base64
// page images in a form post and answers with parsed results per image.
type RemoteOCRClient struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

func NewRemoteOCRClient(cfg *config.Config) *RemoteOCRClient {
	return &RemoteOCRClient{
		apiURL: cfg.OCRAPIURL,
		apiKey: cfg.OCRAPIKey,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.OCRTimeout) * time.Second,
		},
	}
}

// remoteOCRResponse is the wire shape of the recognition API. ErrorMessage
// arrives as either a string or a list of strings depending on the failure,
// so it is kept raw and normalized immediately after decoding.
type remoteOCRResponse struct {
	ParsedResults []struct {
		ParsedText string `json:"ParsedText"`
	} `json:"ParsedResults"`
	IsErroredOnProcessing bool            `json:"IsErroredOnProcessing"`
	ErrorMessage          json.RawMessage `json:"ErrorMessage"`
}

func (r *remoteOCRResponse) errorMessage() string {
	if len(r.ErrorMessage) == 0 {
		return ""
	}
	var single string
	if err := json.Unmarshal(r.ErrorMessage, &single); err == nil {
		return single
	}
	var many []string
	if err := json.Unmarshal(r.ErrorMessage, &many); err == nil {
		return strings.Join(many, "; ")
	}
	return string(r.ErrorMessage)
}

func (c *RemoteOCRClient) Recognize(ctx context.Context, png []byte) (string, error) {
	payload := url.Values{}
	payload.Set("apikey", c.apiKey)
	payload.Set("base64Image", "data:image/png;base64,"+base64.StdEncoding.EncodeToString(png))
	payload.Set("language", "eng")
	payload.Set("isOverlayRequired", "false")
	payload.Set("detectOrientation", "true")
	payload.Set("scale", "true")
	payload.Set("OCREngine", "2")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, strings.NewReader(payload.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create OCR request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("OCR request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("OCR request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var ocrResp remoteOCRResponse
	if err := json.NewDecoder(resp.Body).Decode(&ocrResp); err != nil {
		return "", fmt.Errorf("failed to decode OCR response: %w", err)
	}

	if ocrResp.IsErroredOnProcessing {
		return "", fmt.Errorf("OCR processing failed: %s", ocrResp.errorMessage())
	}
	if len(ocrResp.ParsedResults) == 0 {
		return "", fmt.Errorf("OCR returned no parsed results")
	}

	return ocrResp.ParsedResults[0].ParsedText, nil
}

// TesseractEngine runs a locally installed tesseract binary.
type TesseractEngine struct {
	binPath string
}

func NewTesseractEngine() (*TesseractEngine, error) {
	bin, err := exec.LookPath("tesseract")
	if err != nil {
		return nil, fmt.Errorf("tesseract not available: %w", err)
	}
	return &TesseractEngine{binPath: bin}, nil
}

func (e *TesseractEngine) Recognize(ctx context.Context, png []byte) (string, error) {
	tmpDir, err := os.MkdirTemp("", "docintel-ocr-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	imgPath := filepath.Join(tmpDir, "page.png")
	if err := os.WriteFile(imgPath, png, 0o600); err != nil {
		return "", fmt.Errorf("failed to write page image: %w", err)
	}

	cmd := exec.CommandContext(ctx, e.binPath, imgPath, "stdout")
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract failed: %v, stderr: %s", err, stderr.String())
	}

	return stdout.String(), nil
}
