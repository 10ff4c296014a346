package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iwvelando/investment-calculator/pkg/constants"
)

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address == "" {
		t.Fatalf("expected default address, got empty")
	}
	if cfg.UploadSizeBytes() <= 0 {
		t.Fatalf("expected positive default max upload size, got %d", cfg.UploadSizeBytes())
	}
	if cfg.MaxYears != constants.DefaultMaxYears {
		t.Fatalf("expected default maxYears %d, got %d", constants.DefaultMaxYears, cfg.MaxYears)
	}
	if cfg.Logging.Level != "" || cfg.Logging.Format != "" || cfg.Logging.OutputFile != "" {
		t.Fatalf("expected empty logging defaults, got %+v", cfg.Logging)
	}
	if !cfg.Report.Chart || cfg.Report.Title != constants.DefaultReportTitle {
		t.Fatalf("expected report defaults, got %+v", cfg.Report)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server-config.yaml")

	contents := []byte(`address: 127.0.0.1:9000
maxUploadSize: 2M
maxYears: 40
logging:
  level: debug
  format: console
  outputFile: /tmp/server.log
report:
  title: Quarterly Outlook
  chart: false
`)
	if err := os.WriteFile(path, contents, 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address != "127.0.0.1:9000" {
		t.Fatalf("expected address override, got %s", cfg.Address)
	}
	if cfg.UploadSizeBytes() != 2*1024*1024 {
		t.Fatalf("expected max upload override, got %d", cfg.UploadSizeBytes())
	}
	if cfg.MaxYears != 40 {
		t.Fatalf("expected maxYears 40, got %d", cfg.MaxYears)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected logging level debug, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("expected logging format console, got %s", cfg.Logging.Format)
	}
	if cfg.Logging.OutputFile != "/tmp/server.log" {
		t.Fatalf("expected logging outputFile /tmp/server.log, got %s", cfg.Logging.OutputFile)
	}
	if cfg.Report.Title != "Quarterly Outlook" || cfg.Report.Chart {
		t.Fatalf("expected report overrides, got %+v", cfg.Report)
	}
	if cfg.Report.NAMarker != constants.NotApplicable {
		t.Fatalf("expected untouched report keys to keep defaults, got %q", cfg.Report.NAMarker)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := map[string]string{
		"size":     "maxUploadSize: invalid",
		"maxYears": "maxYears: -1",
		"yaml":     "address: [unclosed",
	}
	for name, contents := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
				t.Fatalf("failed to write temp config: %v", err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Fatal("expected error but got nil")
			}
		})
	}
}

func TestSetUploadSizeBytes(t *testing.T) {
	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("DefaultConfig() error = %v", err)
	}
	cfg.SetUploadSizeBytes(0)
	if cfg.UploadSizeBytes() != constants.DefaultMaxUploadSizeBytes {
		t.Fatalf("zero override changed size to %d", cfg.UploadSizeBytes())
	}
	cfg.SetUploadSizeBytes(4096)
	if cfg.UploadSizeBytes() != 4096 || cfg.MaxUploadSize != "4096" {
		t.Fatalf("override not applied: %d %q", cfg.UploadSizeBytes(), cfg.MaxUploadSize)
	}
}

func TestParseSize(t *testing.T) {
	tests := map[string]int64{
		"":          constants.DefaultMaxUploadSizeBytes,
		"1024":      1024,
		"512b":      512,
		"256K":      256 * 1024,
		"1m":        1024 * 1024,
		"3MB":       3 * 1024 * 1024,
		"2G":        2 * 1024 * 1024 * 1024,
		"  4096   ": 4096,
		"1.5M":      1536 * 1024,
		"0.5kb":     512,
		"8G":        8 << 30,
	}

	for input, expected := range tests {
		got, err := ParseSize(input)
		if err != nil {
			t.Fatalf("parseSize(%q) returned error: %v", input, err)
		}
		if got != expected {
			t.Fatalf("parseSize(%q) = %d, expected %d", input, got, expected)
		}
	}

	if _, err := ParseSize("1TB"); err == nil {
		t.Fatal("expected error for unsupported unit")
	}
	if _, err := ParseSize("abc"); err == nil {
		t.Fatal("expected error for invalid number")
	}
	if _, err := ParseSize("-5K"); err == nil {
		t.Fatal("expected error for negative size")
	}

	// Products that wrap around int64 must be rejected, including those
	// that would wrap back to a positive value.
	for _, input := range []string{"9223372036854775807K", "17179869184G", "36028797018963968K"} {
		if got, err := ParseSize(input); err == nil {
			t.Fatalf("ParseSize(%q) = %d, expected overflow error", input, got)
		}
	}
	if got, err := ParseSize("8589934591G"); err != nil || got != 8589934591<<30 {
		t.Fatalf("ParseSize at the limit = %d, %v", got, err)
	}
}
