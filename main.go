package main

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/zerolog"

	"github.com/ghostwriter-blog/ghostwriter/internal/cache"
	"github.com/ghostwriter-blog/ghostwriter/internal/config"
	"github.com/ghostwriter-blog/ghostwriter/internal/generator"
	"github.com/ghostwriter-blog/ghostwriter/internal/logger"
	"github.com/ghostwriter-blog/ghostwriter/internal/model"
	"github.com/ghostwriter-blog/ghostwriter/internal/pipeline"
	"github.com/ghostwriter-blog/ghostwriter/internal/render"
	"github.com/ghostwriter-blog/ghostwriter/internal/routes"
	"github.com/ghostwriter-blog/ghostwriter/internal/sse"
	"github.com/ghostwriter-blog/ghostwriter/internal/theme"
	"github.com/ghostwriter-blog/ghostwriter/internal/util"
	"github.com/ghostwriter-blog/ghostwriter/internal/view"
)

//go:embed static/* templates/*
var content embed.FS

var log zerolog.Logger

var store = view.NewStore()
var clients = sse.NewClients()

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found")
	}

	if err := config.LoadConfig("config.yaml"); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log = logger.New(config.AppConfig.Logging.Level)
	config.SetLogger(log)
	render.SetLogger(log)
	generator.SetLogger(log)
	pipeline.SetLogger(log)

	// Calculate the hash of static content
	static, _ := fs.Sub(content, config.StaticLocalDir)
	fs.WalkDir(static, ".", func(path string, d fs.DirEntry, err error) error {
		if !d.IsDir() {
			cache.SetStaticHash(config.StaticUrlPath+path, util.ContentHash([]byte(path)))
		}
		return nil
	})

	// One acquisition per process lifetime. Visitors see the loading view
	// until the collection is published (or the error view if it never is).
	go loadCollection(context.Background())

	mux := http.NewServeMux()

	mux.HandleFunc(routes.RobotsPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCType, "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("User-agent: *\nDisallow:"))
	})

	mux.HandleFunc(routes.ThemeOppositeIcon, func(w http.ResponseWriter, r *http.Request) {
		currTheme := r.URL.Query().Get("theme")
		if currTheme == "" {
			http.Error(w, "theme required", http.StatusBadRequest)
			return
		}

		w.Header().Set(config.HCType, config.CTypeHTML)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(theme.GetThemeIcon(currTheme)))
	})

	mux.Handle(config.StaticUrlPath, http.StripPrefix(config.StaticUrlPath, http.FileServer(http.FS(static))))
	mux.HandleFunc(config.PostsUrlPath, servePost)
	mux.HandleFunc(routes.ThemeToggle, serveThemePostToggle)
	mux.HandleFunc(routes.SyntaxThemeSet, serveSyntaxThemePostSet)
	mux.HandleFunc(routes.SyntaxThemeGet, serveSyntaxThemeGetTheme)
	mux.HandleFunc(routes.EventsPath, eventsHandler)
	mux.HandleFunc(routes.RootPath, serveIndex)

	handler := gzhttp.GzipHandler(cacheIt(secureHeaders(mux.ServeHTTP)))

	addr := config.AppConfig.Server.Host + ":" + config.AppConfig.Server.Port
	log.Info().Str("addr", addr).Msg("Listening")
	log.Fatal().Err(http.ListenAndServe(addr, handler)).Msg("Server stopped")
}

// loadCollection runs the acquisition pipeline once and publishes the result
// as the new view state. Facade-level failures have already been absorbed by
// the source; anything that still errors here is terminal for the session.
func loadCollection(ctx context.Context) {
	src, err := generator.NewGeminiSource(ctx, config.GeminiAPIKey(), config.AppConfig.Generation)
	if err != nil {
		log.Error().Err(err).Msg("Failed to construct generative source")
		store.Set(view.NewErrored(""))
		clients.Broadcast("ready")
		return
	}
	defer src.Close()

	posts, err := pipeline.New(src).Acquire(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Acquisition failed")
		store.Set(view.NewErrored(""))
		clients.Broadcast("ready")
		return
	}

	log.Info().Int("posts", len(posts)).Msg("Collection published")
	store.Set(view.NewReady(posts))
	clients.Broadcast("ready")
}

func serveIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != routes.RootPath {
		http.NotFound(w, r)
		return
	}

	st := store.Get()
	switch st.Phase {
	case view.Loading:
		serveStatus(w, r, "loading", "Writing today's posts…")
	case view.Errored:
		serveStatus(w, r, "error", st.Message)
	case view.Ready:
		store.Set(st.ClearSelection())

		tmpl, err := template.ParseFS(content, config.TemplatesLocalDir+"/"+config.TemplateLayout, config.TemplatesLocalDir+"/"+config.TemplateIndex)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		data := struct {
			*model.PageData
			PostsPath string
			Posts     model.Collection
		}{
			PageData:  model.NewPageData(r),
			PostsPath: config.PostsUrlPath,
			Posts:     st.Posts,
		}

		w.Header().Set(config.HETag, util.ContentHashString(data.Theme+data.SyntaxTheme))

		if err := tmpl.ExecuteTemplate(w, config.TemplateLayout, data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func servePost(w http.ResponseWriter, r *http.Request) {
	postID := strings.TrimPrefix(r.URL.Path, config.PostsUrlPath)
	if postID == "" {
		http.NotFound(w, r)
		return
	}

	st := store.Get()
	if st.Phase != view.Ready {
		// Nothing to open yet; fall back to the loading/error view.
		http.Redirect(w, r, routes.RootPath, http.StatusFound)
		return
	}

	next, ok := st.SelectID(model.PostID(postID))
	if !ok {
		http.NotFound(w, r)
		return
	}
	store.Set(next)

	post := next.Selected
	htmlContent := render.RenderMarkdown([]byte(post.Content), theme.GetSyntaxThemeFromRequest(r))

	data := struct {
		*model.PageData
		Post    *model.Post
		Content template.HTML
	}{
		PageData: model.NewPageData(r),
		Post:     post,
		Content:  template.HTML(htmlContent),
	}

	tmpl, err := template.ParseFS(content, config.TemplatesLocalDir+"/"+config.TemplateLayout, config.TemplatesLocalDir+"/"+config.TemplatePost)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := tmpl.ExecuteTemplate(w, config.TemplateLayout, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func serveStatus(w http.ResponseWriter, r *http.Request, kind, message string) {
	tmpl, err := template.ParseFS(content, config.TemplatesLocalDir+"/"+config.TemplateLayout, config.TemplatesLocalDir+"/"+config.TemplateStatus)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := struct {
		*model.PageData
		Kind    string
		Message string
	}{
		PageData: model.NewPageData(r),
		Kind:     kind,
		Message:  message,
	}

	if err := tmpl.ExecuteTemplate(w, config.TemplateLayout, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func cacheIt(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCacheControl, "no-cache")
		w.Header().Set("Vary", "Cookie")

		// Add etag header to response if it's a static file
		if hash, ok := cache.GetStaticHash(r.URL.Path); ok {
			w.Header().Set(config.HCacheControl, "public, max-age=3600")
			w.Header().Set(config.HETag, hash)
		}

		h(w, r)
	}
}

func secureHeaders(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-XSS-Protection", "1; mode=block")

		h(w, r)
	}
}

func serveThemePostToggle(w http.ResponseWriter, r *http.Request) {
	currentTheme := theme.GetThemeFromRequest(r)

	newTheme := config.DefaultTheme
	if currentTheme == config.DarkTheme {
		newTheme = config.LightTheme
	}

	http.SetCookie(w, &http.Cookie{
		Name:  config.CookieTheme,
		Value: newTheme,
		Path:  "/",
	})

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(theme.GetThemeIcon(newTheme)))
}

func serveSyntaxThemePostSet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	currTheme := r.FormValue("syntax-theme-select")
	if currTheme == "" {
		http.Error(w, "theme required", http.StatusBadRequest)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     config.CookieSyntaxTheme,
		Value:    currTheme,
		Path:     "/",
		HttpOnly: true,
	})

	themeStyle := []byte(theme.GenerateSyntaxCSS(currTheme))
	w.WriteHeader(http.StatusOK)
	w.Header().Set(config.HCType, config.CTypeCSS)
	w.Header().Set(config.HETag, util.ContentHash(themeStyle))
	w.Write(themeStyle)
}

func serveSyntaxThemeGetTheme(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	currTheme := r.PathValue("theme")

	themeStyle := []byte(theme.GenerateSyntaxCSS(currTheme))
	w.WriteHeader(http.StatusOK)
	w.Header().Set(config.HCType, config.CTypeCSS)
	w.Header().Set(config.HETag, util.ContentHash(themeStyle))
	w.Write(themeStyle)
}

func eventsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(config.HCType, "text/event-stream")
	w.Header().Set(config.HCacheControl, "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Del("X-Content-Type-Options")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	fmt.Fprintf(w, "event: connected\ndata: SSE connection established\n\n")
	flusher.Flush()

	// The collection may have been published between page render and this
	// subscription; tell the client right away so it doesn't wait forever.
	if store.Get().Phase != view.Loading {
		fmt.Fprintf(w, "data: ready\n\n")
		flusher.Flush()
	}

	client := &sse.Client{Msg: make(chan string)}
	clients.Add(client)

	log.Debug().Msg("SSE client connected")

	defer func() {
		clients.Delete(client)
		log.Debug().Msg("SSE client disconnected")
	}()

	notify := r.Context().Done()
	for {
		select {
		case msg := <-client.Msg:
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		case <-notify:
			return
		}
	}
}
