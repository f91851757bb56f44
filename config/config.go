package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/pflag"
	"github.com/tailscale/hujson"
)

// Config is the full runtime configuration surface.
type Config struct {
	OCREarlyStopConf     float64 `json:"ocr_early_stop_conf"`
	OCRMinConf           float64 `json:"ocr_min_conf"`
	OCRMinLines          int     `json:"ocr_min_lines"`
	OCRMinSpanConf       float64 `json:"ocr_min_span_conf"`
	EnableVisionFallback bool    `json:"enable_vision_fallback"`
	EnableSuperres       bool    `json:"enable_superres"`
	SuperresMinWidth     int     `json:"superres_min_width"`

	AlwaysVerifyCardDB         bool `json:"always_verify_carddb"`
	EnableCardDBOnlineFallback bool `json:"enable_carddb_online_fallback"`
	CardDBAPITimeoutS          int  `json:"carddb_api_timeout_s"`
	CardDBAPIRateLimitMS       int  `json:"carddb_api_rate_limit_ms"`
	FuzzyTopK                  int  `json:"fuzzy_topk"`

	MaxImageBytes             int `json:"max_image_bytes"`
	JobTTLS                   int `json:"job_ttl_s"`
	FingerprintTTLS           int `json:"fingerprint_ttl_s"`
	JobDeadlineS              int `json:"job_deadline_s"`
	SecondaryOCRRatePerMinute int `json:"secondary_ocr_rate_per_minute"`
}

// Default returns the documented defaults from the configuration surface.
func Default() Config {
	return Config{
		OCREarlyStopConf:           0.85,
		OCRMinConf:                 0.62,
		OCRMinLines:                10,
		OCRMinSpanConf:             0.3,
		EnableVisionFallback:       false,
		EnableSuperres:             false,
		SuperresMinWidth:           1200,
		AlwaysVerifyCardDB:         true,
		EnableCardDBOnlineFallback: true,
		CardDBAPITimeoutS:          5,
		CardDBAPIRateLimitMS:       120,
		FuzzyTopK:                  5,
		MaxImageBytes:              10 << 20,
		JobTTLS:                    3600,
		FingerprintTTLS:            604800,
		JobDeadlineS:               30,
		SecondaryOCRRatePerMinute:  10,
	}
}

// Load reads defaults, overlays a JSON-with-comments file at path if it
// exists, and returns the result. A missing path is not an error — the
// defaults alone are a valid configuration.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(raw)
	if err != nil {
		return Config{}, fmt.Errorf("config: invalid JWCC in %s: %w", path, err)
	}
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}

// BindFlags registers one pflag per configuration field against cfg, so a
// cobra command's flag parsing overlays CLI-supplied values directly onto an
// already-loaded Config: flags take precedence over file values, which take
// precedence over defaults.
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.Float64Var(&cfg.OCREarlyStopConf, "ocr-early-stop-conf", cfg.OCREarlyStopConf, "mean confidence at which OCR stops trying further variants")
	fs.Float64Var(&cfg.OCRMinConf, "ocr-min-conf", cfg.OCRMinConf, "mean confidence floor below which secondary OCR is a fallback candidate")
	fs.IntVar(&cfg.OCRMinLines, "ocr-min-lines", cfg.OCRMinLines, "qty-name line count floor below which secondary OCR is a fallback candidate")
	fs.Float64Var(&cfg.OCRMinSpanConf, "ocr-min-span-conf", cfg.OCRMinSpanConf, "span confidence floor below which a span is dropped from scoring")
	fs.BoolVar(&cfg.EnableVisionFallback, "enable-vision-fallback", cfg.EnableVisionFallback, "enable the secondary vision OCR fallback")
	fs.BoolVar(&cfg.EnableSuperres, "enable-superres", cfg.EnableSuperres, "enable the super-resolution preprocessing variant")
	fs.IntVar(&cfg.SuperresMinWidth, "superres-min-width", cfg.SuperresMinWidth, "image width below which super-resolution is inserted")
	fs.BoolVar(&cfg.AlwaysVerifyCardDB, "always-verify-carddb", cfg.AlwaysVerifyCardDB, "require every parsed name to flow through the resolver")
	fs.BoolVar(&cfg.EnableCardDBOnlineFallback, "enable-carddb-online-fallback", cfg.EnableCardDBOnlineFallback, "allow online CardDB resolution steps")
	fs.IntVar(&cfg.CardDBAPITimeoutS, "carddb-api-timeout-s", cfg.CardDBAPITimeoutS, "per-call timeout for the online card database, in seconds")
	fs.IntVar(&cfg.CardDBAPIRateLimitMS, "carddb-api-rate-limit-ms", cfg.CardDBAPIRateLimitMS, "minimum inter-request interval for the online card database, in milliseconds")
	fs.IntVar(&cfg.FuzzyTopK, "fuzzy-topk", cfg.FuzzyTopK, "candidate list size per unresolved parsed line")
	fs.IntVar(&cfg.MaxImageBytes, "max-image-bytes", cfg.MaxImageBytes, "submission size cap in bytes")
	fs.IntVar(&cfg.JobTTLS, "job-ttl-s", cfg.JobTTLS, "completed job retention, in seconds")
	fs.IntVar(&cfg.FingerprintTTLS, "fingerprint-ttl-s", cfg.FingerprintTTLS, "idempotency index retention, in seconds")
	fs.IntVar(&cfg.JobDeadlineS, "job-deadline-s", cfg.JobDeadlineS, "per-job wall-clock deadline, in seconds")
	fs.IntVar(&cfg.SecondaryOCRRatePerMinute, "secondary-ocr-rate-per-minute", cfg.SecondaryOCRRatePerMinute, "per-minute budget for secondary OCR invocations")
}

// JobTTL, FingerprintTTL, and JobDeadline convert the *_s integer fields
// into time.Duration for direct use against job.Config.
func (c Config) JobTTL() time.Duration         { return time.Duration(c.JobTTLS) * time.Second }
func (c Config) FingerprintTTL() time.Duration { return time.Duration(c.FingerprintTTLS) * time.Second }
func (c Config) JobDeadline() time.Duration    { return time.Duration(c.JobDeadlineS) * time.Second }
func (c Config) CardDBAPITimeout() time.Duration {
	return time.Duration(c.CardDBAPITimeoutS) * time.Second
}
func (c Config) CardDBAPIRateLimit() time.Duration {
	return time.Duration(c.CardDBAPIRateLimitMS) * time.Millisecond
}
