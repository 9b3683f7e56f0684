package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig is the subset of settings that may come from the YAML config file.
// Environment variables always win over values found here.
type fileConfig struct {
	Asset struct {
		Root        string   `yaml:"root"`
		CDNBase     string   `yaml:"cdn_base"`
		HostAliases []string `yaml:"host_aliases"`
		Backend     string   `yaml:"backend"`
	} `yaml:"asset"`
	Push struct {
		Endpoint    string  `yaml:"endpoint"`
		AccessToken string  `yaml:"access_token"`
		Concurrency int     `yaml:"concurrency"`
		RatePerSec  float64 `yaml:"rate_per_sec"`
		TimeoutSec  int     `yaml:"timeout_sec"`
	} `yaml:"push"`
}

func readFile(path string) (fileConfig, error) {
	var fc fileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fc, nil
		}
		return fc, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fc, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return fc, nil
}
