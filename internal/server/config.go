package server

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strings"
	"unicode"

	"github.com/iwvelando/investment-calculator/internal/config"
	"github.com/iwvelando/investment-calculator/pkg/constants"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address       string               `yaml:"address"`
	MaxUploadSize string               `yaml:"maxUploadSize"`
	MaxYears      int                  `yaml:"maxYears"`
	Logging       config.LoggingConfig `yaml:"logging"`
	// Report starts from the calculator defaults; keys present in the
	// file override them individually.
	Report          config.ReportConfig `yaml:"report"`
	uploadSizeBytes int64
}

// DefaultConfig returns the server configuration used without a file.
func DefaultConfig() (*Config, error) {
	defaults, err := config.Default()
	if err != nil {
		return nil, err
	}
	return &Config{
		Address:         constants.DefaultServerAddress,
		MaxUploadSize:   fmt.Sprintf("%d", constants.DefaultMaxUploadSizeBytes),
		MaxYears:        constants.DefaultMaxYears,
		Logging:         config.LoggingConfig{},
		Report:          defaults.Report,
		uploadSizeBytes: constants.DefaultMaxUploadSizeBytes,
	}, nil
}

// LoadConfig loads the server configuration from YAML. If the file does not exist,
// defaults are returned without error.
func LoadConfig(path string) (*Config, error) {
	cfg, err := DefaultConfig()
	if err != nil {
		return nil, err
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UploadSizeBytes returns the configured upload size in bytes.
func (c *Config) UploadSizeBytes() int64 {
	return c.uploadSizeBytes
}

// SetUploadSizeBytes overrides the configured upload size.
func (c *Config) SetUploadSizeBytes(size int64) {
	if size > 0 {
		c.uploadSizeBytes = size
		c.MaxUploadSize = fmt.Sprintf("%d", size)
	}
}

func (c *Config) normalize() error {
	if strings.TrimSpace(c.Address) == "" {
		c.Address = constants.DefaultServerAddress
	}
	if c.MaxYears < 0 {
		return fmt.Errorf("invalid maxYears %d: must not be negative", c.MaxYears)
	}

	size, err := ParseSize(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid maxUploadSize: %w", err)
	}
	if size <= 0 {
		size = constants.DefaultMaxUploadSizeBytes
	}
	c.uploadSizeBytes = size
	return nil
}

// sizeUnits maps accepted size suffixes to their multiplier.
var sizeUnits = map[string]int64{
	"":   1,
	"B":  1,
	"K":  1 << 10,
	"KB": 1 << 10,
	"M":  1 << 20,
	"MB": 1 << 20,
	"G":  1 << 30,
	"GB": 1 << 30,
}

// ParseSize converts a byte size such as "4096", "256K" or "1.5MB" into
// bytes. Fractional results are truncated to whole bytes and an empty
// value selects the default upload size.
func ParseSize(value string) (int64, error) {
	s := strings.ToUpper(strings.TrimSpace(value))
	if s == "" {
		return constants.DefaultMaxUploadSizeBytes, nil
	}

	numPart := strings.TrimRightFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	unitPart := strings.TrimSpace(s[len(numPart):])
	if numPart == "" {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	multiplier, ok := sizeUnits[unitPart]
	if !ok {
		return 0, fmt.Errorf("unsupported size unit %q", unitPart)
	}

	n, err := decimal.NewFromString(strings.TrimSpace(numPart))
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}
	if n.IsNegative() {
		return 0, fmt.Errorf("invalid size value %q: must not be negative", value)
	}
	if n.GreaterThan(decimal.NewFromInt(math.MaxInt64 / multiplier)) {
		return 0, fmt.Errorf("size %s exceeds %d bytes", value, int64(math.MaxInt64))
	}
	return n.Mul(decimal.NewFromInt(multiplier)).IntPart(), nil
}
