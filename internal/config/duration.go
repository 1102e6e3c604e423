package config

import "time"

// NavigateTimeout parses Devtools.NavigateTimeout. An empty value yields zero.
func (c *Config) NavigateTimeout() time.Duration {
	d, _ := parseDuration(c.Devtools.NavigateTimeout)
	return d
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
