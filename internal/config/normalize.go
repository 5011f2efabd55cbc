package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeYouTube()
	c.normalizeLLM()
	c.normalizeEmail()
	c.normalizeAutomation()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeYouTube() {
	if c.YouTube.APIKey == "" {
		if value, ok := os.LookupEnv("YOUTUBE_API_KEY"); ok {
			c.YouTube.APIKey = value
		}
	}
	c.YouTube.BaseURL = strings.TrimSpace(c.YouTube.BaseURL)
	if c.YouTube.BaseURL == "" {
		c.YouTube.BaseURL = defaultYouTubeBaseURL
	}
	if c.YouTube.MaxVideos <= 0 {
		c.YouTube.MaxVideos = defaultYouTubeMaxVideos
	}
	if c.YouTube.RequestsPerSecond <= 0 {
		c.YouTube.RequestsPerSecond = defaultYouTubeRPS
	}
}

func (c *Config) normalizeLLM() {
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("GEMINI_API_KEY"); ok {
			c.LLM.APIKey = value
		}
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
}

func (c *Config) normalizeEmail() {
	if c.Email.APIKey == "" {
		if value, ok := os.LookupEnv("RESEND_API_KEY"); ok {
			c.Email.APIKey = value
		}
	}
	if c.Email.FromAddress == "" {
		if value, ok := os.LookupEnv("RESEND_FROM_EMAIL"); ok {
			c.Email.FromAddress = value
		}
	}
	c.Email.FromAddress = strings.TrimSpace(c.Email.FromAddress)
	c.Email.BaseURL = strings.TrimSpace(c.Email.BaseURL)
	if c.Email.BaseURL == "" {
		c.Email.BaseURL = defaultEmailBaseURL
	}
}

func (c *Config) normalizeAutomation() {
	c.Automation.Schedule = strings.TrimSpace(c.Automation.Schedule)
	if c.Automation.Schedule == "" {
		c.Automation.Schedule = defaultAutomationCron
	}
	c.Automation.Channel = strings.TrimSpace(c.Automation.Channel)
	c.Automation.Email = strings.TrimSpace(strings.ToLower(c.Automation.Email))
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
