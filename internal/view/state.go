// Package view models the application's view state: a tagged union over
// loading, errored and ready, with an optional selection inside ready.
// Transitions are total functions from one State value to the next; the
// current value lives in a Store and is replaced atomically.
package view

import (
	"fmt"

	"github.com/ghostwriter-blog/ghostwriter/internal/model"
)

type Phase int

const (
	Loading Phase = iota
	Errored
	Ready
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Errored:
		return "errored"
	case Ready:
		return "ready"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// LoadFailedMessage is the only error detail ever shown to a visitor.
const LoadFailedMessage = "Something went wrong while writing the posts. Please come back later."

// State is an immutable snapshot of the view. Selected, when non-nil, points
// into Posts; it is a reference, not a copy.
type State struct {
	Phase    Phase
	Message  string
	Posts    model.Collection
	Selected *model.Post
}

func NewLoading() State {
	return State{Phase: Loading}
}

func NewErrored(msg string) State {
	if msg == "" {
		msg = LoadFailedMessage
	}
	return State{Phase: Errored, Message: msg}
}

func NewReady(posts model.Collection) State {
	return State{Phase: Ready, Posts: posts}
}

// Select returns a copy of the state with p as the open post. It is defined
// only in the Ready phase and only for posts drawn from the current
// collection; anything else is a programming error and panics.
func (s State) Select(p *model.Post) State {
	if s.Phase != Ready {
		panic(fmt.Sprintf("view: Select called in %s phase", s.Phase))
	}

	for i := range s.Posts {
		if &s.Posts[i] == p {
			s.Selected = p
			return s
		}
	}
	panic("view: selected post is not part of the current collection")
}

// SelectID resolves id against the collection and selects the match. The
// boolean reports whether the id was found; on a miss the state is returned
// unchanged.
func (s State) SelectID(id model.PostID) (State, bool) {
	if s.Phase != Ready {
		return s, false
	}

	p, ok := s.Posts.Find(id)
	if !ok {
		return s, false
	}
	return s.Select(p), true
}

// ClearSelection returns to the list view. The collection is untouched.
func (s State) ClearSelection() State {
	s.Selected = nil
	return s
}
