package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. Credential presence is checked
// at adapter construction time, not here, so the CLI can run without keys.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateYouTube(); err != nil {
		return err
	}
	if err := c.validateTimeouts(); err != nil {
		return err
	}
	if err := c.validateAutomation(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateYouTube() error {
	if c.YouTube.MaxVideos < 1 || c.YouTube.MaxVideos > 50 {
		return errors.New("youtube.max_videos must be between 1 and 50")
	}
	return nil
}

func (c *Config) validateTimeouts() error {
	return ensurePositiveMap(map[string]int{
		"youtube.timeout_seconds":        c.YouTube.TimeoutSeconds,
		"llm.timeout_seconds":            c.LLM.TimeoutSeconds,
		"email.timeout_seconds":          c.Email.TimeoutSeconds,
		"pipeline.drain_timeout_seconds": c.Pipeline.DrainTimeoutSeconds,
	})
}

func (c *Config) validateAutomation() error {
	if !c.Automation.Enabled {
		return nil
	}
	if c.Automation.Channel == "" {
		return errors.New("automation.channel must be set when automation.enabled is true")
	}
	if c.Automation.Email == "" {
		return errors.New("automation.email must be set when automation.enabled is true")
	}
	if c.Automation.Schedule == "" {
		return errors.New("automation.schedule must be set when automation.enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for name, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
