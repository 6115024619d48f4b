package config

import (
	"fmt"
	"regexp"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var timeOfDayRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidTimeOfDay reports whether s is a valid HH:MM reminder time.
func ValidTimeOfDay(s string) bool {
	return timeOfDayRe.MatchString(s)
}

// ValidateConfig checks that required configuration is present and coherent.
func ValidateConfig(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return ValidationError{Field: "DATABASE_URL", Message: "is required"}
	}
	if cfg.JWTSecret == "" {
		return ValidationError{Field: "JWT_SECRET", Message: "is required"}
	}
	if len(cfg.JWTSecret) < 16 {
		return ValidationError{Field: "JWT_SECRET", Message: "must be at least 16 characters"}
	}
	// VAPID keys come as a pair or not at all
	if (cfg.VAPIDPublicKey == "") != (cfg.VAPIDPrivateKey == "") {
		return ValidationError{Field: "VAPID_PUBLIC_KEY/VAPID_PRIVATE_KEY", Message: "must both be set to enable web push"}
	}
	return nil
}

// PushEnabled reports whether a VAPID key pair is configured.
func (c *Config) PushEnabled() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != ""
}
