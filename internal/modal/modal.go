// Package modal presents blocking dialogs (progress, error with retry) to
// the player. The core only knows Surface; LogSurface and Hub are the
// headless and websocket implementations.
package modal

import (
	"log/slog"
	"strings"
	"sync"
)

// Icon selects the dialog glyph.
type Icon string

const (
	IconLoading Icon = "loading"
	IconError   Icon = "error"
)

// Button is a dialog action. OnActivate must not block.
type Button struct {
	Label      string
	OnActivate func()
}

// Dialog is what a Surface shows.
type Dialog struct {
	Icon    Icon
	Message string
	Buttons []Button
}

// Labels returns the button labels in order.
func (d Dialog) Labels() []string {
	labels := make([]string, len(d.Buttons))
	for i, b := range d.Buttons {
		labels[i] = b.Label
	}
	return labels
}

// Surface shows and hides a single modal dialog. Show replaces whatever is
// currently shown.
type Surface interface {
	Show(d Dialog)
	Hide()
}

// LogSurface writes dialogs to the log. When AutoActivate names a button
// label, that button is activated as soon as a dialog offering it is shown.
type LogSurface struct {
	AutoActivate string

	mu      sync.Mutex
	current *Dialog
}

// NewLogSurface creates a LogSurface; autoActivate may be empty.
func NewLogSurface(autoActivate string) *LogSurface {
	return &LogSurface{AutoActivate: autoActivate}
}

// Show implements Surface.
func (s *LogSurface) Show(d Dialog) {
	s.mu.Lock()
	s.current = &d
	s.mu.Unlock()

	if d.Icon == IconError {
		slog.Warn("modal", "icon", d.Icon, "message", d.Message, "buttons", d.Labels())
	} else {
		slog.Info("modal", "icon", d.Icon, "message", d.Message)
	}

	if s.AutoActivate == "" {
		return
	}
	for _, b := range d.Buttons {
		if strings.EqualFold(b.Label, s.AutoActivate) && b.OnActivate != nil {
			slog.Info("modal button auto-activated", "button", b.Label)
			b.OnActivate()
			return
		}
	}
}

// Hide implements Surface.
func (s *LogSurface) Hide() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	slog.Debug("modal hidden")
}

// Current returns the dialog being shown.
func (s *LogSurface) Current() (Dialog, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Dialog{}, false
	}
	return *s.current, true
}

type tee []Surface

// Tee fans Show and Hide out to every surface in order.
func Tee(surfaces ...Surface) Surface {
	return tee(surfaces)
}

func (t tee) Show(d Dialog) {
	for _, s := range t {
		s.Show(d)
	}
}

func (t tee) Hide() {
	for _, s := range t {
		s.Hide()
	}
}
