package config

import (
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("wrong default port: %q", cfg.Port)
	}
	if cfg.MinTextThreshold != 50 {
		t.Errorf("wrong default text threshold: %d", cfg.MinTextThreshold)
	}
	if cfg.OCRPageLimit != 5 {
		t.Errorf("wrong default OCR page limit: %d", cfg.OCRPageLimit)
	}
	if cfg.OCRProvider != "remote" {
		t.Errorf("wrong default OCR provider: %q", cfg.OCRProvider)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MIN_TEXT_THRESHOLD", "120")
	t.Setenv("OCR_DPI", "200")
	t.Setenv("TRACING_ENABLED", "true")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("port override ignored: %q", cfg.Port)
	}
	if cfg.MinTextThreshold != 120 {
		t.Errorf("threshold override ignored: %d", cfg.MinTextThreshold)
	}
	if cfg.OCRDPI != 200 {
		t.Errorf("dpi override ignored: %v", cfg.OCRDPI)
	}
	if !cfg.TracingEnabled {
		t.Error("tracing override ignored")
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Setenv("MIN_TEXT_THRESHOLD", "-5")
	if _, err := LoadConfig(); err == nil {
		t.Error("expected rejection of a negative threshold")
	}

	t.Setenv("MIN_TEXT_THRESHOLD", "50")
	t.Setenv("OCR_PROVIDER", "carrier-pigeon")
	if _, err := LoadConfig(); err == nil {
		t.Error("expected rejection of an unknown OCR provider")
	}
}

func TestGetEnvFallsBackOnUnparsable(t *testing.T) {
	t.Setenv("OCR_TIMEOUT", "not-a-number")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OCRTimeout != 30 {
		t.Errorf("expected default for unparsable value, got %d", cfg.OCRTimeout)
	}
}
