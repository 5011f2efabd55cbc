package testsupport

import (
	"path/filepath"
	"testing"

	"titledoctor/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.YouTube.APIKey = "test-youtube-key"
	cfgVal.LLM.APIKey = "test-llm-key"
	cfgVal.Email.APIKey = "test-email-key"
	cfgVal.Email.FromAddress = "reports@example.com"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithAutomation enables the scheduled submission on the test config.
func WithAutomation(schedule, channel, email string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Automation.Enabled = true
		b.cfg.Automation.Schedule = schedule
		b.cfg.Automation.Channel = channel
		b.cfg.Automation.Email = email
	}
}

// WithYouTubeBaseURL points the YouTube adapter at a test server.
func WithYouTubeBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.YouTube.BaseURL = url
	}
}

// WithLLMBaseURL points the title model adapter at a test server.
func WithLLMBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.BaseURL = url
	}
}

// WithEmailBaseURL points the mail adapter at a test server.
func WithEmailBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Email.BaseURL = url
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
