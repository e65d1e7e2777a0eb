// Package pipeline acquires one session's post collection: a batch of drafts
// from the text model, then one illustration per draft, merged in order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/ghostwriter-blog/ghostwriter/internal/generator"
	"github.com/ghostwriter-blog/ghostwriter/internal/model"
)

var pipeLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	pipeLogger = l
}

// ErrBusy is returned when Acquire is invoked while a previous acquisition is
// still in flight. The pipeline runs once per session and is not re-entrant.
var ErrBusy = errors.New("pipeline: acquisition already in progress")

type Pipeline struct {
	src     generator.Source
	running atomic.Bool
}

func New(src generator.Source) *Pipeline {
	return &Pipeline{src: src}
}

// Acquire fetches the drafts, fans out one illustration request per draft,
// waits for all of them at a barrier, and zips the results into a Collection
// in the original draft order. No partial collection is ever returned.
//
// An empty draft batch yields an empty Collection and a nil error; only
// orchestration-level failures (a dead context, the source erroring outright)
// surface as errors.
func (p *Pipeline) Acquire(ctx context.Context) (model.Collection, error) {
	if !p.running.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer p.running.Store(false)

	drafts, err := p.src.Drafts(ctx)
	if err != nil {
		return nil, fmt.Errorf("pipeline: drafts: %w", err)
	}

	pipeLogger.Info().Int("drafts", len(drafts)).Msg("Drafts acquired, fetching illustrations")

	posts := make(model.Collection, len(drafts))

	var wg sync.WaitGroup
	for i := range drafts {
		wg.Add(1)
		go func(i int, draft model.PostDraft) {
			defer wg.Done()
			// Illustration is total: it cannot fail, so the barrier
			// cannot stall or partially fail.
			posts[i] = model.Post{
				PostDraft: draft,
				ImageURL:  template.URL(p.src.Illustration(ctx, draft.ImagePrompt)),
			}
		}(i, drafts[i])
	}
	wg.Wait()

	return posts, nil
}
