package config

import "fmt"

func validate(c *Config) error {
	if c.TimeLimit <= 0 {
		return fmt.Errorf("time limit must be > 0")
	}
	if c.StagnationThreshold <= 0 {
		return fmt.Errorf("stagnation threshold must be > 0")
	}
	if c.SettleWait <= 0 {
		return fmt.Errorf("settle wait must be > 0")
	}
	if c.ElementWait <= 0 {
		return fmt.Errorf("element wait must be > 0")
	}
	if c.ScrollsPerSecond <= 0 {
		return fmt.Errorf("scroll rate must be > 0")
	}
	if c.LoginAttempts <= 0 {
		return fmt.Errorf("login attempts must be > 0")
	}
	if c.EngagementScrolls <= 0 || c.EngagementMax <= 0 {
		return fmt.Errorf("engagement limits must be > 0")
	}
	return nil
}
