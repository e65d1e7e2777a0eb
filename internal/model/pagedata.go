package model

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/ghostwriter-blog/ghostwriter/internal/config"
	"github.com/ghostwriter-blog/ghostwriter/internal/theme"
)

type PageData struct {
	SiteName    string
	SiteTagline string

	PageURL string

	Theme               string
	AllowThemeSwitching bool

	SyntaxCSS    template.CSS
	SyntaxTheme  string
	SyntaxThemes []string
}

func NewPageData(r *http.Request) *PageData {
	syntaxtheme := theme.GetSyntaxThemeFromRequest(r)
	return &PageData{
		SiteName:            config.AppConfig.Site.Name,
		SiteTagline:         config.AppConfig.Site.Tagline,
		PageURL:             r.URL.Path,
		Theme:               theme.GetThemeFromRequest(r),
		AllowThemeSwitching: config.AppConfig.Theme.AllowSwitching,
		SyntaxTheme:         syntaxtheme,
		SyntaxThemes:        theme.GetSyntaxThemes(),
		SyntaxCSS:           theme.GenerateSyntaxCSS(syntaxtheme),
	}
}

func (pd *PageData) IsPost() bool {
	return strings.HasPrefix(pd.PageURL, config.PostsUrlPath)
}
