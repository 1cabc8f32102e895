// Package editor holds the requirements editor's edit/preview toggle.
//
// The editor and the preview pane are toggled independently, so after a
// failed preview request both can end up hidden until the user toggles
// back. The busy indicator stays on after a failure.
package editor

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// PreviewPath renders requirements text to HTML.
const PreviewPath = "/requirements/preview/"

// Button labels.
const (
	LabelPreview = "Preview"
	LabelEdit    = "Edit"
)

// Mode is the editor's display mode.
type Mode int

const (
	EditMode Mode = iota
	PreviewMode
)

// Poster sends a plain-text body and returns the response body.
type Poster interface {
	PostText(ctx context.Context, path, body string) (string, error)
}

// State is a snapshot of what the editor shows.
type State struct {
	Mode           Mode
	ButtonLabel    string
	Contents       string
	PreviewHTML    string
	EditorVisible  bool
	PreviewVisible bool
	Busy           bool
}

// Editor is the edit/preview state machine.
type Editor struct {
	poster Poster
	logger *zap.Logger

	mu sync.Mutex
	st State
}

// New returns an editor in edit mode with the given contents.
func New(poster Poster, contents string, logger *zap.Logger) *Editor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Editor{
		poster: poster,
		logger: logger,
		st: State{
			Mode:          EditMode,
			ButtonLabel:   LabelPreview,
			Contents:      contents,
			EditorVisible: true,
		},
	}
}

// SetContents replaces the editor text.
func (e *Editor) SetContents(s string) {
	e.mu.Lock()
	e.st.Contents = s
	e.mu.Unlock()
}

// State returns a snapshot of the editor.
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st
}

// Toggle switches between edit and preview mode. Entering preview mode
// posts the contents for rendering and shows the result when it arrives.
// The returned error is the preview request's, if any.
func (e *Editor) Toggle(ctx context.Context) error {
	e.mu.Lock()
	if e.st.Mode == PreviewMode {
		e.st.ButtonLabel = LabelPreview
		e.st.Mode = EditMode
		e.st.PreviewVisible = !e.st.PreviewVisible
		e.st.EditorVisible = !e.st.EditorVisible
		e.mu.Unlock()
		return nil
	}

	e.st.ButtonLabel = LabelEdit
	e.st.Busy = true
	e.st.Mode = PreviewMode
	contents := e.st.Contents
	e.mu.Unlock()

	html, err := e.poster.PostText(ctx, PreviewPath, contents)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.logger.Warn("preview request failed", zap.String("path", PreviewPath), zap.Error(err))
	} else {
		e.st.PreviewHTML = html
		e.st.PreviewVisible = !e.st.PreviewVisible
		e.st.Busy = false
	}
	e.st.EditorVisible = !e.st.EditorVisible
	return err
}
