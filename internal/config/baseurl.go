package config

import (
	"regexp"
	"strings"

	"github.com/padup/padup/internal/errors"
	"github.com/padup/padup/internal/log"
)

// Mode is the deployment environment the client runs against.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeStaging     Mode = "staging"
	ModeProduction  Mode = "production"
)

// DevelopmentBaseURL is the fixed API address used in development mode.
const DevelopmentBaseURL = "http://localhost:5000/api"

var apiSegment = regexp.MustCompile(`/api(/|$)`)

// ParseMode converts a mode string.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeDevelopment, ModeStaging, ModeProduction:
		return m, nil
	case "dev":
		return ModeDevelopment, nil
	case "prod":
		return ModeProduction, nil
	default:
		return "", errors.New(errors.ErrCodeConfigInvalid, "unknown mode: "+s).
			WithSuggestion("Use one of: development, staging, production")
	}
}

// ResolveBaseURL returns the API base address for mode.
//
// Development always uses DevelopmentBaseURL. Other modes require an /api
// path segment, appending one when missing. With nothing configured the
// development address is used and an error is logged.
func ResolveBaseURL(mode Mode, configured string, logger *log.Logger) string {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	base := strings.TrimSpace(configured)

	if mode == ModeDevelopment {
		if base != "" && !strings.Contains(base, "localhost") {
			logger.Warn("development mode ignores configured API base URL",
				"configured", base, "using", DevelopmentBaseURL)
		}
		base = DevelopmentBaseURL
	} else {
		if base != "" && !apiSegment.MatchString(base) {
			logger.Warn("API base URL has no /api segment, appending it", "configured", base)
			base = strings.TrimSuffix(base, "/") + "/api"
		}
		if base == "" {
			logger.LogError(errors.NewBaseURLMissingError(string(mode)))
		}
	}

	if base == "" {
		base = DevelopmentBaseURL
	}
	logger.Debug("resolved API base URL", "base_url", base, "mode", string(mode))
	return base
}
