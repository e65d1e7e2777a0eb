// Package routes defines HTTP route constants for the application.
package routes

const (
	// Static and assets
	RobotsPath        = "/robots.txt"
	ThemeOppositeIcon = "/theme/opposite-icon"
	ThemeToggle       = "/theme/toggle"
	SyntaxThemeSet    = "/syntax-theme/set"
	SyntaxThemeGet    = "/syntax-theme/{theme}"

	// SSE: the loading page listens here for the collection to be published
	EventsPath = "/events"

	// Root (card grid); the detail view lives under config.PostsUrlPath
	RootPath = "/"
)
