package main

import (
	"context"
	"fmt"
	"html/template"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ghostwriter-blog/ghostwriter/internal/config"
	"github.com/ghostwriter-blog/ghostwriter/internal/generator"
	"github.com/ghostwriter-blog/ghostwriter/internal/model"
	"github.com/ghostwriter-blog/ghostwriter/internal/pipeline"
	"github.com/ghostwriter-blog/ghostwriter/internal/view"
)

func setupApp(t *testing.T) {
	t.Helper()

	originalConfig := config.AppConfig
	originalStore := store
	t.Cleanup(func() {
		config.AppConfig = originalConfig
		store = originalStore
	})

	config.SetLogger(zerolog.Nop())
	generator.SetLogger(zerolog.Nop())
	pipeline.SetLogger(zerolog.Nop())

	config.AppConfig = &config.Config{}
	config.ApplyDefaults(config.AppConfig)

	store = view.NewStore()
}

func fivePosts() model.Collection {
	posts := make(model.Collection, 5)
	for i := range posts {
		n := i + 1
		posts[i] = model.Post{
			PostDraft: model.PostDraft{
				ID:      model.PostID(fmt.Sprintf("p%d", n)),
				Title:   fmt.Sprintf("Post number %d", n),
				Summary: fmt.Sprintf("Summary %d", n),
				Content: fmt.Sprintf("# Body %d", n),
				Date:    fmt.Sprintf("2025-08-0%d", n),
			},
			ImageURL: template.URL(fmt.Sprintf("data:image/png;base64,img%d", n)),
		}
	}
	return posts
}

func TestServeIndex(t *testing.T) {
	setupApp(t)

	t.Run("loading view while acquiring", func(t *testing.T) {
		store.Set(view.NewLoading())

		rec := httptest.NewRecorder()
		serveIndex(rec, httptest.NewRequest("GET", "/", nil))

		body := rec.Body.String()
		if !strings.Contains(body, "Writing today") {
			t.Errorf("expected loading message, got %s", body)
		}
		if !strings.Contains(body, "/events") {
			t.Error("loading view should subscribe to the event stream")
		}
	})

	t.Run("error view after a failed load", func(t *testing.T) {
		store.Set(view.NewErrored(""))

		rec := httptest.NewRecorder()
		serveIndex(rec, httptest.NewRequest("GET", "/", nil))

		body := rec.Body.String()
		if !strings.Contains(body, view.LoadFailedMessage) {
			t.Errorf("expected the fixed error message, got %s", body)
		}
		if strings.Contains(body, "card-grid") {
			t.Error("no cards should render in the error view")
		}
	})

	t.Run("ready view renders one card per post", func(t *testing.T) {
		store.Set(view.NewReady(fivePosts()))

		rec := httptest.NewRecorder()
		serveIndex(rec, httptest.NewRequest("GET", "/", nil))

		body := rec.Body.String()
		for n := 1; n <= 5; n++ {
			if !strings.Contains(body, fmt.Sprintf("Post number %d", n)) {
				t.Errorf("expected card for post %d", n)
			}
			if !strings.Contains(body, fmt.Sprintf(`href="/posts/p%d"`, n)) {
				t.Errorf("expected link to post p%d", n)
			}
		}
	})

	t.Run("ready view with an empty collection", func(t *testing.T) {
		store.Set(view.NewReady(nil))

		rec := httptest.NewRecorder()
		serveIndex(rec, httptest.NewRequest("GET", "/", nil))

		body := rec.Body.String()
		if !strings.Contains(body, "Nothing got written") {
			t.Errorf("expected empty-collection notice, got %s", body)
		}
	})

	t.Run("unknown path is a 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		serveIndex(rec, httptest.NewRequest("GET", "/unknown", nil))

		if rec.Code != 404 {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})
}

func TestServePost(t *testing.T) {
	setupApp(t)

	t.Run("detail view shows exactly the selected post", func(t *testing.T) {
		store.Set(view.NewReady(fivePosts()))

		rec := httptest.NewRecorder()
		servePost(rec, httptest.NewRequest("GET", "/posts/p3", nil))

		body := rec.Body.String()
		if !strings.Contains(body, "Post number 3") {
			t.Errorf("expected post 3's title, got %s", body)
		}
		if !strings.Contains(body, "2025-08-03") {
			t.Error("expected post 3's date")
		}
		if !strings.Contains(body, "Body 3") {
			t.Error("expected post 3's rendered body")
		}
		if strings.Contains(body, "Post number 2") {
			t.Error("other posts should not appear in the detail view")
		}
		if !strings.Contains(body, "All posts") {
			t.Error("expected a back action")
		}

		// The selection is recorded in the view state.
		if st := store.Get(); st.Selected == nil || st.Selected.ID != "p3" {
			t.Errorf("expected p3 selected in the store, got %+v", st.Selected)
		}
	})

	t.Run("back to the index clears the selection, same collection", func(t *testing.T) {
		posts := fivePosts()
		store.Set(view.NewReady(posts))

		rec := httptest.NewRecorder()
		servePost(rec, httptest.NewRequest("GET", "/posts/p3", nil))

		rec = httptest.NewRecorder()
		serveIndex(rec, httptest.NewRequest("GET", "/", nil))

		st := store.Get()
		if st.Selected != nil {
			t.Error("selection should be cleared after returning to the index")
		}
		if &st.Posts[0] != &posts[0] {
			t.Error("returning to the index must not re-fetch the collection")
		}
	})

	t.Run("unknown post is a 404", func(t *testing.T) {
		store.Set(view.NewReady(fivePosts()))

		rec := httptest.NewRecorder()
		servePost(rec, httptest.NewRequest("GET", "/posts/nope", nil))

		if rec.Code != 404 {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("redirects home while still loading", func(t *testing.T) {
		store.Set(view.NewLoading())

		rec := httptest.NewRecorder()
		servePost(rec, httptest.NewRequest("GET", "/posts/p1", nil))

		if rec.Code != 302 {
			t.Errorf("expected redirect, got %d", rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/" {
			t.Errorf("expected redirect to /, got %s", loc)
		}
	})

	t.Run("missing id is a 404", func(t *testing.T) {
		store.Set(view.NewReady(fivePosts()))

		rec := httptest.NewRecorder()
		servePost(rec, httptest.NewRequest("GET", "/posts/", nil))

		if rec.Code != 404 {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})
}

func TestLoadCollection(t *testing.T) {
	setupApp(t)

	// Without a credential the facade degrades: the session still reaches
	// Ready, just with nothing to show.
	t.Setenv("GEMINI_API_KEY", "")

	loadCollection(context.Background())

	st := store.Get()
	if st.Phase != view.Ready {
		t.Fatalf("expected Ready, got %s", st.Phase)
	}
	if len(st.Posts) != 0 {
		t.Errorf("expected an empty collection, got %d posts", len(st.Posts))
	}
}

func TestServeThemePostToggle(t *testing.T) {
	setupApp(t)

	rec := httptest.NewRecorder()
	serveThemePostToggle(rec, httptest.NewRequest("POST", "/theme/toggle", nil))

	cookies := rec.Result().Cookies()
	var themeCookie string
	for _, c := range cookies {
		if c.Name == config.CookieTheme {
			themeCookie = c.Value
		}
	}
	if themeCookie != config.LightTheme {
		t.Errorf("toggling from the dark default should set light, got %s", themeCookie)
	}
}
