package logging

import (
	"context"
	"log/slog"
	"strings"
)

// componentFilter drops records whose component attribute is disabled.
// The component may arrive with the record or, more usually, through
// WithAttrs when a child logger is made.
type componentFilter struct {
	base      slog.Handler
	disabled  map[string]struct{}
	component string
}

func newComponentFilter(base slog.Handler, disabled []string) *componentFilter {
	set := make(map[string]struct{}, len(disabled))
	for _, c := range disabled {
		if c != "" {
			set[strings.ToLower(c)] = struct{}{}
		}
	}
	return &componentFilter{base: base, disabled: set}
}

func (h *componentFilter) Enabled(ctx context.Context, level slog.Level) bool {
	if h.muted(h.component) {
		return false
	}
	return h.base.Enabled(ctx, level)
}

func (h *componentFilter) Handle(ctx context.Context, r slog.Record) error {
	component := h.component
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == ComponentKey {
			component = a.Value.String()
			return false
		}
		return true
	})
	if h.muted(component) {
		return nil
	}
	return h.base.Handle(ctx, r)
}

func (h *componentFilter) WithAttrs(attrs []slog.Attr) slog.Handler {
	child := *h
	child.base = h.base.WithAttrs(attrs)
	for _, a := range attrs {
		if a.Key == ComponentKey {
			child.component = a.Value.String()
		}
	}
	return &child
}

func (h *componentFilter) WithGroup(name string) slog.Handler {
	child := *h
	child.base = h.base.WithGroup(name)
	return &child
}

func (h *componentFilter) muted(component string) bool {
	if component == "" {
		return false
	}
	_, ok := h.disabled[strings.ToLower(component)]
	return ok
}
