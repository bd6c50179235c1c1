package catalog_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/boutique/internal/catalog"
	"github.com/pkordes/boutique/internal/domain"
)

// ---- mock ------------------------------------------------------------------

type mockTagSource struct {
	mu          sync.Mutex
	listCalls   int
	createCalls int

	listTagsFn  func(ctx context.Context, category string) ([]domain.Tag, error)
	createTagFn func(ctx context.Context, label, category string) (domain.Tag, error)
}

var _ catalog.TagSource = (*mockTagSource)(nil)

func (m *mockTagSource) ListTags(ctx context.Context, category string) ([]domain.Tag, error) {
	m.mu.Lock()
	m.listCalls++
	m.mu.Unlock()
	return m.listTagsFn(ctx, category)
}

func (m *mockTagSource) CreateTag(ctx context.Context, label, category string) (domain.Tag, error) {
	m.mu.Lock()
	m.createCalls++
	m.mu.Unlock()
	return m.createTagFn(ctx, label, category)
}

func (m *mockTagSource) creates() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createCalls
}

// colorSource knows "red" and "crimson" in the color category and creates
// whatever it is asked to.
func colorSource() *mockTagSource {
	return &mockTagSource{
		listTagsFn: func(_ context.Context, category string) ([]domain.Tag, error) {
			if category != "color" {
				return nil, nil
			}
			return []domain.Tag{tag("red", "color"), tag("crimson", "color")}, nil
		},
		createTagFn: func(_ context.Context, label, category string) (domain.Tag, error) {
			return domain.Tag{ID: uuid.New(), Label: label, Category: category}, nil
		},
	}
}

// ---- Suggest ---------------------------------------------------------------

func TestTagPicker_Suggest_CaseInsensitiveContains(t *testing.T) {
	p := catalog.NewTagPicker(colorSource(), nil)

	got := p.Suggest(context.Background(), "color", "R")

	assert.Equal(t, []string{"red", "crimson"}, domain.Labels(got.Existing))
	assert.Equal(t, "R", got.Create)
	assert.Equal(t, catalog.Suggesting, p.State("color"))
}

func TestTagPicker_Suggest_ExactMatchOffersNoCreate(t *testing.T) {
	p := catalog.NewTagPicker(colorSource(), nil)

	got := p.Suggest(context.Background(), "color", "red")

	assert.Equal(t, []string{"red"}, domain.Labels(got.Existing))
	assert.Empty(t, got.Create)
}

func TestTagPicker_Suggest_CaseVariantOffersCreate(t *testing.T) {
	p := catalog.NewTagPicker(colorSource(), nil)

	got := p.Suggest(context.Background(), "color", "Red")

	assert.Equal(t, []string{"red"}, domain.Labels(got.Existing))
	assert.Equal(t, "Red", got.Create)
}

func TestTagPicker_Suggest_EmptyQueryIsIdle(t *testing.T) {
	p := catalog.NewTagPicker(colorSource(), nil)

	got := p.Suggest(context.Background(), "color", "   ")

	assert.Empty(t, got.Existing)
	assert.Empty(t, got.Create)
	assert.Equal(t, catalog.Idle, p.State("color"))
}

func TestTagPicker_Suggest_ExcludesSelected(t *testing.T) {
	p := catalog.NewTagPicker(colorSource(), nil)
	ctx := context.Background()
	_, _, err := p.Add(ctx, "color", "red")
	require.NoError(t, err)

	got := p.Suggest(ctx, "color", "r")

	assert.Equal(t, []string{"crimson"}, domain.Labels(got.Existing))
}

func TestTagPicker_Suggest_LoadsOncePerCategory(t *testing.T) {
	src := colorSource()
	p := catalog.NewTagPicker(src, nil)
	ctx := context.Background()

	p.Suggest(ctx, "color", "r")
	p.Suggest(ctx, "color", "re")
	p.Suggest(ctx, "type", "m")

	assert.Equal(t, 2, src.listCalls)
}

func TestTagPicker_Suggest_LoadFailureFailsOpen(t *testing.T) {
	src := colorSource()
	src.listTagsFn = func(context.Context, string) ([]domain.Tag, error) {
		return nil, errors.New("connection refused")
	}
	p := catalog.NewTagPicker(src, nil)

	got := p.Suggest(context.Background(), "color", "red")

	assert.Empty(t, got.Existing)
	assert.Equal(t, "red", got.Create)
	assert.Empty(t, p.Known("color"))
}

// ---- Add -------------------------------------------------------------------

func TestTagPicker_Add_ExistingTagNeedsNoNetwork(t *testing.T) {
	src := colorSource()
	p := catalog.NewTagPicker(src, nil)
	ctx := context.Background()
	p.Suggest(ctx, "color", "re")

	got, added, err := p.Add(ctx, "color", "red")

	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, "red", got.Label)
	assert.Equal(t, 0, src.creates())
	assert.Equal(t, []string{"red"}, domain.Labels(p.Selected()))
	assert.Empty(t, p.Query("color"))
	assert.Equal(t, catalog.Idle, p.State("color"))
}

func TestTagPicker_Add_CreatesUnknownLabel(t *testing.T) {
	src := colorSource()
	p := catalog.NewTagPicker(src, nil)

	got, added, err := p.Add(context.Background(), "color", "  Red ")

	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, "Red", got.Label)
	assert.Equal(t, "color", got.Category)
	assert.Equal(t, 1, src.creates())
	assert.Contains(t, domain.Labels(p.Known("color")), "Red")
	assert.Equal(t, []domain.TagRef{{Label: "Red", Category: "color"}}, p.SelectedRefs())
}

func TestTagPicker_Add_IgnoresEmptyAndDuplicate(t *testing.T) {
	src := colorSource()
	p := catalog.NewTagPicker(src, nil)
	ctx := context.Background()

	_, added, err := p.Add(ctx, "color", "  ")
	require.NoError(t, err)
	assert.False(t, added)

	_, _, err = p.Add(ctx, "color", "red")
	require.NoError(t, err)
	_, added, err = p.Add(ctx, "color", "red")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Len(t, p.Selected(), 1)
}

func TestTagPicker_Add_CreateFailureLeavesStateUnchanged(t *testing.T) {
	src := colorSource()
	src.createTagFn = func(context.Context, string, string) (domain.Tag, error) {
		return domain.Tag{}, domain.ErrConflict
	}
	p := catalog.NewTagPicker(src, nil)
	ctx := context.Background()
	p.Suggest(ctx, "color", "teal")
	knownBefore := len(p.Known("color"))

	_, added, err := p.Add(ctx, "color", "teal")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.False(t, added)
	assert.Empty(t, p.Selected())
	assert.Len(t, p.Known("color"), knownBefore)
	assert.Equal(t, "teal", p.Query("color"))
	assert.Equal(t, catalog.Suggesting, p.State("color"))
}

func TestTagPicker_Add_SecondCreateWhileInFlightIsBusy(t *testing.T) {
	src := colorSource()
	release := make(chan struct{})
	src.createTagFn = func(_ context.Context, label, category string) (domain.Tag, error) {
		<-release
		return domain.Tag{ID: uuid.New(), Label: label, Category: category}, nil
	}
	p := catalog.NewTagPicker(src, nil)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, _, err := p.Add(ctx, "color", "teal")
		done <- err
	}()
	require.Eventually(t, func() bool {
		return p.State("color") == catalog.Committing
	}, time.Second, time.Millisecond)

	_, _, err := p.Add(ctx, "color", "teal")
	assert.ErrorIs(t, err, catalog.ErrBusy)

	// Typing during the request does not leave the committing state.
	p.Suggest(ctx, "color", "te")
	assert.Equal(t, catalog.Committing, p.State("color"))

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, src.creates())
	assert.Equal(t, []string{"teal"}, domain.Labels(p.Selected()))
	assert.Equal(t, catalog.Idle, p.State("color"))
}

func TestTagPicker_Add_FailureAfterClearedInputIsIdle(t *testing.T) {
	src := colorSource()
	release := make(chan struct{})
	src.createTagFn = func(context.Context, string, string) (domain.Tag, error) {
		<-release
		return domain.Tag{}, domain.ErrConflict
	}
	p := catalog.NewTagPicker(src, nil)
	ctx := context.Background()
	p.Suggest(ctx, "color", "teal")

	done := make(chan error, 1)
	go func() {
		_, _, err := p.Add(ctx, "color", "teal")
		done <- err
	}()
	require.Eventually(t, func() bool {
		return p.State("color") == catalog.Committing
	}, time.Second, time.Millisecond)

	// The input is cleared while the request is still out.
	p.Suggest(ctx, "color", "")

	close(release)
	require.ErrorIs(t, <-done, domain.ErrConflict)
	assert.Equal(t, "", p.Query("color"))
	assert.Equal(t, catalog.Idle, p.State("color"))
}

func TestTagPicker_Add_OtherCategoryNotBlocked(t *testing.T) {
	src := colorSource()
	release := make(chan struct{})
	src.createTagFn = func(_ context.Context, label, category string) (domain.Tag, error) {
		if category == "color" {
			<-release
		}
		return domain.Tag{ID: uuid.New(), Label: label, Category: category}, nil
	}
	p := catalog.NewTagPicker(src, nil)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, _, err := p.Add(ctx, "color", "teal")
		done <- err
	}()
	require.Eventually(t, func() bool {
		return p.State("color") == catalog.Committing
	}, time.Second, time.Millisecond)

	_, added, err := p.Add(ctx, "type", "mug")
	require.NoError(t, err)
	assert.True(t, added)

	close(release)
	require.NoError(t, <-done)
	assert.Len(t, p.Selected(), 2)
}

// ---- Remove / Reset --------------------------------------------------------

func TestTagPicker_RemoveAndReset(t *testing.T) {
	p := catalog.NewTagPicker(colorSource(), nil)
	ctx := context.Background()
	_, _, _ = p.Add(ctx, "color", "red")
	_, _, _ = p.Add(ctx, "color", "crimson")

	p.Remove("red")
	assert.Equal(t, []string{"crimson"}, domain.Labels(p.SelectedIn("color")))

	p.Suggest(ctx, "color", "cr")
	p.Reset()
	assert.Empty(t, p.Selected())
	assert.Empty(t, p.Query("color"))
	assert.NotEmpty(t, p.Known("color"))
}

func TestInputState_String(t *testing.T) {
	assert.Equal(t, "idle", catalog.Idle.String())
	assert.Equal(t, "suggesting", catalog.Suggesting.String())
	assert.Equal(t, "committing", catalog.Committing.String())
}
