package config

import (
	"errors"
	"net/url"
)

type Config struct {
	API struct {
		URL         string `yaml:"url"`
		TokenSecret string `yaml:"token_secret"`
	} `yaml:"api"`

	Redis struct {
		URL string `yaml:"url"`
	} `yaml:"redis"`

	Queue struct {
		Name string `yaml:"name"`
	} `yaml:"queue"`

	Provider struct {
		PlaceTimeoutSeconds int `yaml:"place_timeout_seconds"`
	} `yaml:"provider"`

	Exposure struct {
		Cap int `yaml:"cap"`
	} `yaml:"exposure"`

	Sessions struct {
		// Accounts marked logged-in at startup.
		Accounts []string `yaml:"accounts"`
	} `yaml:"sessions"`

	Logging struct {
		Level  string `yaml:"level"`  // "debug" | "info" | "warn" | "error"
		Format string `yaml:"format"` // "text" | "json"
	} `yaml:"logging"`
}

func (c *Config) Defaults() {
	if c.API.URL == "" {
		c.API.URL = "http://api:3001"
	}
	if c.Redis.URL == "" {
		c.Redis.URL = "redis://redis:6379"
	}
	if c.Queue.Name == "" {
		c.Queue.Name = "arb-execute"
	}
	if c.Provider.PlaceTimeoutSeconds == 0 {
		c.Provider.PlaceTimeoutSeconds = 30
	}
	if c.Exposure.Cap == 0 {
		c.Exposure.Cap = 10000
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

func (c *Config) Validate() error {
	var errs []string
	if u, err := url.Parse(c.API.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "api.url must be an absolute URL")
	}
	if c.Redis.URL == "" {
		errs = append(errs, "redis.url must be set")
	}
	if c.Provider.PlaceTimeoutSeconds < 0 {
		errs = append(errs, "provider.place_timeout_seconds must be positive")
	}
	if c.Exposure.Cap < 0 {
		errs = append(errs, "exposure.cap must be positive")
	}
	if len(errs) > 0 {
		return errors.New(joinErrs(errs))
	}
	return nil
}

func joinErrs(es []string) string {
	if len(es) == 1 {
		return es[0]
	}
	out := es[0]
	for i := 1; i < len(es); i++ {
		out += "; " + es[i]
	}
	return out
}
