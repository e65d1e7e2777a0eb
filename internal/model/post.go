// Package model defines core data structures and types for the generated blog.
package model

import "html/template"

type PostID string

// PostDraft is the text-only record returned by the generation step, before an
// image is attached. The json tags mirror the structured-output contract sent
// to the model.
type PostDraft struct {
	ID          PostID `json:"id"`
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	Content     string `json:"content"`
	Date        string `json:"date"`
	ImagePrompt string `json:"imagePrompt"`
}

// Post is a PostDraft enriched with a resolved image reference. ImageURL is
// always populated, either with an inline data URI or the placeholder.
// Posts are never mutated after the pipeline publishes them.
type Post struct {
	PostDraft

	ImageURL template.URL
}

// Collection is the fixed, ordered set of posts for one session.
// Insertion order is generation order; it is never appended to or reordered.
type Collection []Post

func (c Collection) Find(id PostID) (*Post, bool) {
	for i := range c {
		if c[i].ID == id {
			return &c[i], true
		}
	}
	return nil, false
}
