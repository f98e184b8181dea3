package httpapi

import (
	"net/http"
	"slices"
	"time"
)

const defaultMaxBodyBytes = 1 << 20

// Settings tunes the HTTP layer. Zero values select the defaults.
type Settings struct {
	// MaxBodyBytes caps JSON request bodies; 0 means 1 MiB.
	MaxBodyBytes int64
	// TranslateTimeout bounds one /translate stream; 0 means no limit.
	TranslateTimeout time.Duration
	CORSEnabled      bool
	// CORSOrigins defaults to "*" when CORS is enabled without origins.
	CORSOrigins []string
}

var settings = Settings{MaxBodyBytes: defaultMaxBodyBytes}

// Configure installs s for muxes built afterwards by NewMux.
func Configure(s Settings) {
	if s.MaxBodyBytes <= 0 {
		s.MaxBodyBytes = defaultMaxBodyBytes
	}
	if s.TranslateTimeout < 0 {
		s.TranslateTimeout = 0
	}
	s.CORSOrigins = slices.Clone(s.CORSOrigins)
	if s.CORSEnabled && len(s.CORSOrigins) == 0 {
		s.CORSOrigins = []string{"*"}
	}
	settings = s
}

// The API surface is fixed, so CORS methods and headers are too.
var (
	corsMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	corsHeaders = []string{"Content-Type", "Authorization", "X-Log-Level", "X-Request-Id"}
)
