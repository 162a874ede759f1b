package dataloader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/UkralStul/yatube-service/internal/domain"
	"github.com/UkralStul/yatube-service/internal/storage/inmemory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore считает обращения к пакетным методам
type countingStore struct {
	*inmemory.Store
	userCalls atomic.Int32
	fail      error
}

func (s *countingStore) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	s.userCalls.Add(1)
	if s.fail != nil {
		return nil, s.fail
	}
	return s.Store.GetUsersByIDs(ctx, ids)
}

func TestLoaders_UsersBatched(t *testing.T) {
	prev := batchWait
	batchWait = 50 * time.Millisecond
	t.Cleanup(func() { batchWait = prev })

	store := &countingStore{Store: inmemory.New()}
	ctx := context.Background()

	leo, err := store.CreateUser(ctx, &domain.User{Username: "leo"})
	require.NoError(t, err)
	anna, err := store.CreateUser(ctx, &domain.User{Username: "anna"})
	require.NoError(t, err)

	loaders := NewLoaders(store)
	users, err := loaders.Users(ctx, []string{leo.ID, anna.ID, leo.ID, "missing", ""})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "anna", users[anna.ID].Username)
	assert.Equal(t, int32(1), store.userCalls.Load())

	// Повторная загрузка берётся из кеша лоадера
	_, err = loaders.Users(ctx, []string{leo.ID})
	require.NoError(t, err)
	assert.Equal(t, int32(1), store.userCalls.Load())

	empty, err := loaders.Users(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestLoaders_Groups(t *testing.T) {
	store := inmemory.New()
	ctx := context.Background()

	group, err := store.CreateGroup(ctx, &domain.Group{Title: "Cats", Slug: "cats"})
	require.NoError(t, err)

	groups, err := NewLoaders(store).Groups(ctx, []string{group.ID, "missing"})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "cats", groups[group.ID].Slug)
}

func TestLoaders_Error(t *testing.T) {
	boom := errors.New("boom")
	store := &countingStore{Store: inmemory.New(), fail: boom}

	_, err := NewLoaders(store).Users(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, boom)
}

func TestMiddleware(t *testing.T) {
	store := inmemory.New()
	var got *Loaders
	h := Middleware(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = For(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotNil(t, got)
	assert.NotNil(t, got.UserByID)
	assert.NotNil(t, got.GroupByID)
}
