package crud

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions/internal/table"
	"admissions/pkg/ctxutil"
	pkgerrors "admissions/pkg/errors"
	"admissions/pkg/models"
)

func authed() context.Context {
	return ctxutil.WithUserID(context.Background(), "user-1")
}

func TestService_CreateRequiresIdentity(t *testing.T) {
	repo := newMemRepo()
	svc := NewService[widget](repo, widgetSchema())

	_, err := svc.Create(context.Background(), &widget{Name: "Main"})

	require.Error(t, err)
	assert.True(t, pkgerrors.IsUnauthorized(err))
	assert.Contains(t, err.Error(), "not authenticated")
	assert.Zero(t, repo.calls)
}

func TestService_CreateRejectsInvalidBeforeStorage(t *testing.T) {
	repo := newMemRepo()
	svc := NewService[widget](repo, widgetSchema())

	_, err := svc.Create(authed(), &widget{Name: "  "})

	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Contains(t, err.Error(), "is required")
	assert.Zero(t, repo.calls)
}

func TestService_CreateStampsUserAndPublishes(t *testing.T) {
	repo := newMemRepo()
	pub := &recordingPublisher{}
	svc := NewService[widget](repo, widgetSchema(), WithEvents[widget](pub))

	created, err := svc.Create(authed(), &widget{Meta: Meta{ID: "client-id", UserID: "spoofed"}, Name: "Main"})
	require.NoError(t, err)

	assert.Equal(t, "w-1", created.ID)
	assert.Equal(t, "user-1", created.UserID)
	require.Len(t, pub.events, 1)
	assert.Equal(t, models.EntityChangeEvent{
		Entity:    "widget",
		Title:     "Widget",
		Action:    models.ActionCreate,
		ID:        "w-1",
		Name:      "Main",
		ChangedBy: "user-1",
		Timestamp: pub.events[0].Timestamp,
	}, pub.events[0])
}

func TestService_PublishFailureDoesNotFailMutation(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewService[widget](newMemRepo(), widgetSchema(), WithEvents[widget](pub))

	_, err := svc.Create(authed(), &widget{Name: "Main"})

	require.NoError(t, err)
	assert.Len(t, pub.events, 1)
}

func TestService_UpdateKeepsCreatedAt(t *testing.T) {
	created := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	repo := newMemRepo(widget{Meta: Meta{ID: "w-9", UserID: "someone", CreatedAt: created}, Name: "Old"})
	svc := NewService[widget](repo, widgetSchema())

	updated, err := svc.Update(authed(), "w-9", &widget{Name: "New"})
	require.NoError(t, err)

	assert.Equal(t, "w-9", updated.ID)
	assert.Equal(t, "user-1", updated.UserID)
	assert.Equal(t, created, updated.CreatedAt)
	assert.Equal(t, "New", repo.items["w-9"].Name)
}

func TestService_DeletePublishesExistingLabel(t *testing.T) {
	repo := newMemRepo(widget{Meta: Meta{ID: "w-1"}, Name: "North"})
	pub := &recordingPublisher{}
	svc := NewService[widget](repo, widgetSchema(), WithEvents[widget](pub))

	require.NoError(t, svc.Delete(authed(), "w-1"))

	assert.Empty(t, repo.items)
	require.Len(t, pub.events, 1)
	assert.Equal(t, models.ActionDelete, pub.events[0].Action)
	assert.Equal(t, "North", pub.events[0].Name)
}

func TestService_DeleteRequiresIdentity(t *testing.T) {
	repo := newMemRepo(widget{Meta: Meta{ID: "w-1"}, Name: "North"})
	svc := NewService[widget](repo, widgetSchema())

	err := svc.Delete(context.Background(), "w-1")

	assert.True(t, pkgerrors.IsUnauthorized(err))
	assert.Len(t, repo.items, 1)
}

func TestService_ListSearchAndSort(t *testing.T) {
	repo := newMemRepo(
		widget{Meta: Meta{ID: "a"}, Name: "North Hall", Capacity: 30},
		widget{Meta: Meta{ID: "b"}, Name: "South Hall", Capacity: 10},
		widget{Meta: Meta{ID: "c"}, Name: "Library", Capacity: 20},
	)
	svc := NewService[widget](repo, widgetSchema())

	items, err := svc.List(context.Background(), ListParams{
		Query: "hall",
		Sort:  table.SortState{Key: "capacity", Direction: table.Ascending},
	})
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, "b", items[0].ID)
	assert.Equal(t, "a", items[1].ID)
}

func TestService_ListLimitAppliesAfterSearchAndSort(t *testing.T) {
	repo := NewMemoryRepository(widgetSchema())
	svc := NewService[widget](repo, widgetSchema())
	for _, name := range []string{"Alpha", "Charlie", "Bravo"} {
		_, err := svc.Create(authed(), &widget{Name: name})
		require.NoError(t, err)
	}

	items, err := svc.List(context.Background(), ListParams{
		Sort:  table.SortState{Key: "name", Direction: table.Ascending},
		Limit: 2,
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Alpha", items[0].Name)
	assert.Equal(t, "Bravo", items[1].Name)

	items, err = svc.List(context.Background(), ListParams{Query: "alpha", Limit: 1})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Alpha", items[0].Name)

	items, err = svc.List(context.Background(), ListParams{Limit: 1})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Bravo", items[0].Name, "plain lists stay newest first")
}

func TestService_ListRejectsUnknownSortKey(t *testing.T) {
	svc := NewService[widget](newMemRepo(), widgetSchema())

	_, err := svc.List(context.Background(), ListParams{Sort: table.SortState{Key: "user_id"}})

	assert.True(t, pkgerrors.IsValidation(err))
}
