package config

import "github.com/abdul-hamid-achik/apidoc/packages/body"

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Document:        boolPtr(true),
		Host:            "",
		Headers:         nil,
		Redact:          nil,
		Placeholder:     body.DefaultPlaceholder,
		StrictMultipart: boolPtr(false),
		Timeout:         30000, // 30 seconds
		FollowRedirects: boolPtr(false),
		MaxRedirects:    10,
		Proxy:           "",
		Database:        "apidoc.db",
		LogLevel:        "warn",
		LogFormat:       "console",
		LogFile:         "",
		NoColor:         boolPtr(false),
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return c.GetDocument() == defaults.GetDocument() &&
		c.Host == defaults.Host &&
		len(c.Headers) == 0 &&
		len(c.Redact) == 0 &&
		c.Placeholder == defaults.Placeholder &&
		c.GetStrictMultipart() == defaults.GetStrictMultipart() &&
		c.Timeout == defaults.Timeout &&
		c.GetFollowRedirects() == defaults.GetFollowRedirects() &&
		c.MaxRedirects == defaults.MaxRedirects &&
		c.Proxy == defaults.Proxy &&
		c.Database == defaults.Database &&
		c.EnvFile == defaults.EnvFile &&
		c.LogLevel == defaults.LogLevel &&
		c.LogFormat == defaults.LogFormat &&
		c.LogFile == defaults.LogFile &&
		c.GetNoColor() == defaults.GetNoColor()
}
