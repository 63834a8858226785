// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/siemens/pingbridge/journal"
	"github.com/siemens/pingbridge/types"

	"gopkg.in/yaml.v3"
)

// Profile is a named set of probe settings, as read from a YAML file.
type Profile struct {
	Interval          time.Duration `yaml:"interval"`
	Timeout           time.Duration `yaml:"timeout"`
	Count             int           `yaml:"count"`
	Interface         string        `yaml:"interface"`
	IPv4              bool          `yaml:"ipv4"`
	IPv6              bool          `yaml:"ipv6"`
	Native            bool          `yaml:"native"`
	Unprivileged      bool          `yaml:"unprivileged"`
	NetNS             string        `yaml:"netns"`
	DNSPreResolve     bool          `yaml:"dns_pre_resolve"`
	DNSResolveTimeout time.Duration `yaml:"dns_resolve_timeout"`
	Threshold         uint          `yaml:"threshold"`
	Journal           Journal       `yaml:"journal"`
}

// Journal configures recording outcomes into a journal file.
type Journal struct {
	Path             string `yaml:"path"`
	journal.Rotation `yaml:",inline"`
}

// Defaults returns the settings used in case no configuration file is
// provided.
func Defaults() Profile {
	return Profile{
		Interval:      time.Second,
		Timeout:       5 * time.Second,
		Count:         4,
		DNSPreResolve: true,
		Threshold:     50,
		Journal: Journal{
			Rotation: journal.DefaultRotation,
		},
	}
}

// Load reads a profile from the specified YAML file, with unspecified
// settings taking their defaults. An empty path or missing file results in
// the default profile.
func Load(path string) (Profile, error) {
	if path == "" {
		return Defaults(), nil
	}
	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Defaults(), nil
	}
	if err != nil {
		return Profile{}, fmt.Errorf("read config: %w", err)
	}
	profile := Defaults()
	if err := yaml.Unmarshal(content, &profile); err != nil {
		return Profile{}, fmt.Errorf("parse config: %w", err)
	}
	if err := profile.Validate(); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// Validate the profile, returning an error wrapping [types.ErrInvalidConfig]
// if invalid.
func (p Profile) Validate() error {
	if p.Interval <= 0 {
		return types.ConfigErrorf("interval must be positive, got: %s", p.Interval)
	}
	if p.Timeout < 0 {
		return types.ConfigErrorf("timeout must not be negative, got: %s", p.Timeout)
	}
	if p.Count < 0 {
		return types.ConfigErrorf("count must not be negative, got: %d", p.Count)
	}
	if _, err := types.IPVersionFromFlags(p.IPv4, p.IPv6); err != nil {
		return err
	}
	if p.DNSResolveTimeout < 0 {
		return types.ConfigErrorf("DNS resolve timeout must not be negative, got: %s", p.DNSResolveTimeout)
	}
	if p.Threshold > 100 {
		return types.ConfigErrorf("threshold must be a percentage between 0 and 100, got: %d", p.Threshold)
	}
	return nil
}
