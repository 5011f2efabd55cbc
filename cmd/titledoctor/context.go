package main

import (
	"context"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"titledoctor/internal/api"
	"titledoctor/internal/config"
	"titledoctor/internal/jobs"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) client() *api.Client {
	return api.NewClient(c.configValue().Paths.APIBind)
}

// withJobs prefers the running daemon's API and falls back to opening the job
// store directly when the daemon is unreachable. Exactly one of client or
// store is non-nil inside fn.
func (c *commandContext) withJobs(ctx context.Context, fn func(client *api.Client, store *jobs.Store) error) error {
	client := c.client()
	if _, err := client.Status(ctx); err == nil {
		return fn(client, nil)
	}

	store, err := jobs.Open(c.configValue())
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(nil, store)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
