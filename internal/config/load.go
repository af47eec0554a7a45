package config

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		var cfg Config
		cfg.applyEnv()
		cfg.Defaults()
		return &cfg, err
	}
	defer f.Close()
	return FromReader(f)
}

func FromReader(r io.Reader) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	cfg.Defaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv lets deploy-time environment win over the file for the few
// settings that differ per environment.
func (c *Config) applyEnv() {
	if v := os.Getenv("API_URL"); v != "" {
		c.API.URL = v
	}
	if v := os.Getenv("API_TOKEN_SECRET"); v != "" {
		c.API.TokenSecret = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Redis.URL = v
	}
	if v := os.Getenv("QUEUE_NAME"); v != "" {
		c.Queue.Name = v
	}
}
