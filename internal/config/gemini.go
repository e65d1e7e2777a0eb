package config

import (
	"os"
	"strings"
)

const envGeminiAPIKey = "GEMINI_API_KEY"

// GeminiAPIKey returns the credential for the generative backend, or "" when
// it is not configured. An empty key is not fatal: the facade degrades to
// empty drafts and placeholder images instead of crashing.
func GeminiAPIKey() string {
	return strings.TrimSpace(os.Getenv(envGeminiAPIKey))
}
