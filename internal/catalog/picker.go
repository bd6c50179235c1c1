package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"github.com/pkordes/boutique/internal/domain"
)

// TagSource is the tag collaborator the picker reads from and writes to.
type TagSource interface {
	ListTags(ctx context.Context, category string) ([]domain.Tag, error)
	CreateTag(ctx context.Context, label, category string) (domain.Tag, error)
}

// InputState is the state of one category's tag input.
type InputState int

const (
	// Idle means the query is empty.
	Idle InputState = iota
	// Suggesting means a non-empty query is showing suggestions.
	Suggesting
	// Committing means a tag creation request is in flight.
	Committing
)

func (s InputState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Suggesting:
		return "suggesting"
	case Committing:
		return "committing"
	default:
		return fmt.Sprintf("InputState(%d)", int(s))
	}
}

// Suggestions is what a category input offers for the current query.
// Create holds the trimmed query when adding it would create a new tag,
// and is empty otherwise.
type Suggestions struct {
	Existing []domain.Tag
	Create   string
}

// TagPicker drives the admin tag inputs of a product form. It keeps one input
// per category, a cache of known tags per category, and the selection shared
// by all inputs.
type TagPicker struct {
	source TagSource
	logger *slog.Logger

	mu       sync.Mutex
	known    map[string][]domain.Tag
	loaded   map[string]bool
	queries  map[string]string
	states   map[string]InputState
	selected []domain.Tag

	guard inflight
}

// NewTagPicker builds a picker reading tags from source.
func NewTagPicker(source TagSource, logger *slog.Logger) *TagPicker {
	if logger == nil {
		logger = slog.Default()
	}
	return &TagPicker{
		source:  source,
		logger:  logger,
		known:   make(map[string][]domain.Tag),
		loaded:  make(map[string]bool),
		queries: make(map[string]string),
		states:  make(map[string]InputState),
	}
}

// Suggest records query as the category's input and returns the matching
// known tags. Known tags are loaded on first use; if that load fails the
// picker carries on with no suggestions and retries on the next call.
func (p *TagPicker) Suggest(ctx context.Context, category, query string) Suggestions {
	p.ensureLoaded(ctx, category)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.queries[category] = query
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		p.setState(category, Idle)
		return Suggestions{}
	}
	p.setState(category, Suggesting)

	needle := cases.Fold().String(trimmed)
	var out Suggestions
	exact := false
	for _, t := range p.known[category] {
		if t.Label == trimmed {
			exact = true
		}
		if p.isSelected(t.Label) {
			continue
		}
		if strings.Contains(cases.Fold().String(t.Label), needle) {
			out.Existing = append(out.Existing, t)
		}
	}
	if !exact && !p.isSelected(trimmed) {
		out.Create = trimmed
	}
	return out
}

// Add selects the tag labelled label in category, creating it through the
// source when no known tag carries exactly that label.
//
// An empty label or one that is already selected is ignored (added=false).
// If creation fails the error is returned and the picker is left as it was.
// A second Add for a category whose creation is still in flight returns ErrBusy.
func (p *TagPicker) Add(ctx context.Context, category, label string) (tag domain.Tag, added bool, err error) {
	trimmed := strings.TrimSpace(label)

	p.mu.Lock()
	if trimmed == "" || p.isSelected(trimmed) {
		p.mu.Unlock()
		return domain.Tag{}, false, nil
	}
	p.mu.Unlock()

	p.ensureLoaded(ctx, category)

	p.mu.Lock()
	for _, t := range p.known[category] {
		if t.Label == trimmed {
			p.selectLocked(category, t)
			p.mu.Unlock()
			return t, true, nil
		}
	}
	if !p.guard.begin(category) {
		p.mu.Unlock()
		return domain.Tag{}, false, ErrBusy
	}
	p.setState(category, Committing)
	p.mu.Unlock()

	created, err := p.source.CreateTag(ctx, trimmed, category)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.guard.end(category)
	if err != nil {
		p.setState(category, stateFor(p.queries[category]))
		return domain.Tag{}, false, fmt.Errorf("catalog.TagPicker.Add: %w", err)
	}

	known := make([]domain.Tag, 0, len(p.known[category])+1)
	known = append(known, p.known[category]...)
	p.known[category] = append(known, created)
	p.selectLocked(category, created)
	return created, true, nil
}

// Remove deselects the tag labelled label.
func (p *TagPicker) Remove(label string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	next := make([]domain.Tag, 0, len(p.selected))
	for _, t := range p.selected {
		if t.Label != label {
			next = append(next, t)
		}
	}
	p.selected = next
}

// Selected returns every selected tag in selection order.
func (p *TagPicker) Selected() []domain.Tag {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selected
}

// SelectedRefs returns the selection as label references for a product draft.
func (p *TagPicker) SelectedRefs() []domain.TagRef {
	selected := p.Selected()
	refs := make([]domain.TagRef, len(selected))
	for i, t := range selected {
		refs[i] = domain.TagRef{Label: t.Label, Category: t.Category}
	}
	return refs
}

// SelectedIn returns the selected tags of one category.
func (p *TagPicker) SelectedIn(category string) []domain.Tag {
	var out []domain.Tag
	for _, t := range p.Selected() {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

// Known returns the cached tags of category, without loading them.
func (p *TagPicker) Known(category string) []domain.Tag {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.known[category]
}

// State returns the state of the category's input.
func (p *TagPicker) State(category string) InputState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.states[category]
}

// Query returns the category's current input text.
func (p *TagPicker) Query(category string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queries[category]
}

// Reset clears the selection and every input, keeping the known-tag cache.
func (p *TagPicker) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selected = nil
	p.queries = make(map[string]string)
	p.states = make(map[string]InputState)
}

// ensureLoaded fetches the category's tags once. Failures are logged and
// leave the cache empty.
func (p *TagPicker) ensureLoaded(ctx context.Context, category string) {
	p.mu.Lock()
	done := p.loaded[category]
	p.mu.Unlock()
	if done {
		return
	}

	tags, err := p.source.ListTags(ctx, category)
	if err != nil {
		p.logger.WarnContext(ctx, "tag suggestions unavailable", "category", category, "error", err)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loaded[category] {
		return
	}
	p.known[category] = tags
	p.loaded[category] = true
}

// selectLocked appends t to the selection and clears the category's input.
// Callers hold p.mu.
func (p *TagPicker) selectLocked(category string, t domain.Tag) {
	next := make([]domain.Tag, 0, len(p.selected)+1)
	next = append(next, p.selected...)
	p.selected = append(next, t)
	p.queries[category] = ""
	p.setState(category, Idle)
}

func (p *TagPicker) isSelected(label string) bool {
	for _, t := range p.selected {
		if t.Label == label {
			return true
		}
	}
	return false
}

// stateFor is the resting state of an input holding query.
func stateFor(query string) InputState {
	if strings.TrimSpace(query) == "" {
		return Idle
	}
	return Suggesting
}

func (p *TagPicker) setState(category string, s InputState) {
	if p.states[category] == Committing && s != Committing && p.guard.busy(category) {
		return
	}
	p.states[category] = s
}
