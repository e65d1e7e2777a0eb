// Package generator wraps the generative-AI backend behind two capability
// methods: one that produces a batch of post drafts and one that produces an
// illustration for a prompt.
package generator

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ghostwriter-blog/ghostwriter/internal/model"
)

var genLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	genLogger = l
}

// Source is the boundary the acquisition pipeline talks to. A real network
// client and a deterministic stub both implement it.
//
// Drafts absorbs transport and parse failures: those are logged and degrade to
// an empty slice with a nil error. The error return is reserved for
// orchestration-level failure (dead context, aborted session), which the
// caller surfaces as the terminal error view.
//
// Illustration is total. It always returns a usable image reference, either an
// inline data URI from the model or PlaceholderImage.
type Source interface {
	Drafts(ctx context.Context) ([]model.PostDraft, error)
	Illustration(ctx context.Context, prompt string) string
}

// PlaceholderImage is a 1x1 transparent GIF, served whenever the backend does
// not hand back an inline image (safety filter, partial response, transport
// error, missing credential).
const PlaceholderImage = "data:image/gif;base64,R0lGODlhAQABAIAAAAAAAP///yH5BAEAAAAALAAAAAABAAEAAAIBRAA7"
