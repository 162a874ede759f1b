package inmemory

import (
	"context"
	"fmt"
	"testing"

	"github.com/UkralStul/yatube-service/internal/domain"
	"github.com/UkralStul/yatube-service/internal/paginator"
	"github.com/UkralStul/yatube-service/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore создает хранилище с двумя пользователями и группой
func newTestStore(t *testing.T) (*Store, *domain.User, *domain.User, *domain.Group) {
	store := New()
	ctx := context.Background()

	leo, err := store.CreateUser(ctx, &domain.User{Username: "leo"})
	require.NoError(t, err)
	anna, err := store.CreateUser(ctx, &domain.User{Username: "anna"})
	require.NoError(t, err)
	group, err := store.CreateGroup(ctx, &domain.Group{Title: "Cats", Slug: "cats", Description: "about cats"})
	require.NoError(t, err)

	return store, leo, anna, group
}

func createPosts(t *testing.T, s *Store, authorID string, groupID *string, n int) []*domain.Post {
	posts := make([]*domain.Post, 0, n)
	for i := 0; i < n; i++ {
		p, err := s.CreatePost(context.Background(), &domain.Post{
			Text:     fmt.Sprintf("post %d", i),
			AuthorID: authorID,
			GroupID:  groupID,
		})
		require.NoError(t, err)
		posts = append(posts, p)
	}
	return posts
}

func TestStore_CreateUser_Duplicate(t *testing.T) {
	store, _, _, _ := newTestStore(t)

	_, err := store.CreateUser(context.Background(), &domain.User{Username: "leo"})
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrConflict)
}

func TestStore_CreateAndGetPost(t *testing.T) {
	store, leo, _, _ := newTestStore(t)
	ctx := context.Background()

	post, err := store.CreatePost(ctx, &domain.Post{Text: "Hello", AuthorID: leo.ID})
	require.NoError(t, err)
	assert.NotEmpty(t, post.ID)
	assert.False(t, post.CreatedAt.IsZero())

	retrieved, err := store.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", retrieved.Text)

	_, err = store.GetPostByID(ctx, "non-existent-id")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_CreatePost_UnknownAuthorOrGroup(t *testing.T) {
	store, leo, _, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreatePost(ctx, &domain.Post{Text: "x", AuthorID: "nobody"})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	missing := "missing-group"
	_, err = store.CreatePost(ctx, &domain.Post{Text: "x", AuthorID: leo.ID, GroupID: &missing})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	count, err := store.CountPosts(ctx, storage.PostFilter{})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStore_ReturnedPostIsCopy(t *testing.T) {
	store, leo, _, _ := newTestStore(t)
	ctx := context.Background()

	post, err := store.CreatePost(ctx, &domain.Post{Text: "original", AuthorID: leo.ID})
	require.NoError(t, err)
	post.Text = "mutated"

	stored, err := store.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", stored.Text)
}

func TestStore_PostsNewestFirst(t *testing.T) {
	store, leo, _, _ := newTestStore(t)
	ctx := context.Background()

	posts := createPosts(t, store, leo.ID, nil, 3)

	got, err := store.GetPosts(ctx, storage.PostFilter{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, posts[2].ID, got[0].ID)
	assert.Equal(t, posts[1].ID, got[1].ID)
	assert.Equal(t, posts[0].ID, got[2].ID)
}

func TestStore_Pagination(t *testing.T) {
	store, leo, _, _ := newTestStore(t)
	ctx := context.Background()

	createPosts(t, store, leo.ID, nil, 13)

	count, err := store.CountPosts(ctx, storage.PostFilter{})
	require.NoError(t, err)
	assert.Equal(t, 13, count)

	first := paginator.New(count, paginator.PostsPerPage, "1")
	firstPage, err := store.GetPosts(ctx, storage.PostFilter{}, first.Limit(), first.Offset())
	require.NoError(t, err)
	assert.Len(t, firstPage, 10)

	second := paginator.New(count, paginator.PostsPerPage, "2")
	secondPage, err := store.GetPosts(ctx, storage.PostFilter{}, second.Limit(), second.Offset())
	require.NoError(t, err)
	assert.Len(t, secondPage, 3)

	// Страницы не пересекаются
	seen := make(map[string]bool)
	for _, p := range append(firstPage, secondPage...) {
		assert.False(t, seen[p.ID])
		seen[p.ID] = true
	}
}

func TestStore_GroupAndProfileListing(t *testing.T) {
	store, leo, anna, group := newTestStore(t)
	ctx := context.Background()

	post, err := store.CreatePost(ctx, &domain.Post{Text: "in group", AuthorID: leo.ID, GroupID: &group.ID})
	require.NoError(t, err)
	createPosts(t, store, anna.ID, nil, 2)

	byGroup, err := store.GetPosts(ctx, storage.PostFilter{GroupID: group.ID}, 10, 0)
	require.NoError(t, err)
	require.Len(t, byGroup, 1)
	assert.Equal(t, post.ID, byGroup[0].ID)

	byAuthor, err := store.GetPosts(ctx, storage.PostFilter{AuthorID: leo.ID}, 10, 0)
	require.NoError(t, err)
	require.Len(t, byAuthor, 1)
	assert.Equal(t, post.ID, byAuthor[0].ID)
}

func TestStore_UpdatePost(t *testing.T) {
	store, leo, _, group := newTestStore(t)
	ctx := context.Background()

	post, err := store.CreatePost(ctx, &domain.Post{Text: "before", AuthorID: leo.ID})
	require.NoError(t, err)

	updated, err := store.UpdatePost(ctx, &domain.Post{ID: post.ID, Text: "after", GroupID: &group.ID, AuthorID: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Text)
	assert.Equal(t, leo.ID, updated.AuthorID)
	require.NotNil(t, updated.GroupID)
	assert.Equal(t, group.ID, *updated.GroupID)
	assert.Equal(t, post.CreatedAt, updated.CreatedAt)

	_, err = store.UpdatePost(ctx, &domain.Post{ID: "missing", Text: "x"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_Follow_Twice(t *testing.T) {
	store, leo, anna, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Follow(ctx, leo.ID, anna.ID))
	require.NoError(t, store.Follow(ctx, leo.ID, anna.ID))

	follows, err := store.GetFollows(ctx, leo.ID)
	require.NoError(t, err)
	require.Len(t, follows, 1)
	assert.Equal(t, anna.ID, follows[0].AuthorID)
}

func TestStore_Follow_SelfAndUnknown(t *testing.T) {
	store, leo, _, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Follow(ctx, leo.ID, leo.ID))
	require.NoError(t, store.Follow(ctx, leo.ID, "nobody"))

	follows, err := store.GetFollows(ctx, leo.ID)
	require.NoError(t, err)
	assert.Empty(t, follows)
}

func TestStore_Unfollow(t *testing.T) {
	store, leo, anna, _ := newTestStore(t)
	ctx := context.Background()

	// Отписка без подписки ничего не делает
	require.NoError(t, store.Unfollow(ctx, leo.ID, anna.ID))

	require.NoError(t, store.Follow(ctx, leo.ID, anna.ID))
	ok, err := store.IsFollowing(ctx, leo.ID, anna.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Unfollow(ctx, leo.ID, anna.ID))
	ok, err = store.IsFollowing(ctx, leo.ID, anna.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_Feed(t *testing.T) {
	store, leo, anna, _ := newTestStore(t)
	ctx := context.Background()

	bob, err := store.CreateUser(ctx, &domain.User{Username: "bob"})
	require.NoError(t, err)

	annaPost := createPosts(t, store, anna.ID, nil, 1)[0]
	createPosts(t, store, bob.ID, nil, 1)

	require.NoError(t, store.Follow(ctx, leo.ID, anna.ID))

	feed, err := store.GetPosts(ctx, storage.PostFilter{FollowerID: leo.ID}, 10, 0)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, annaPost.ID, feed[0].ID)

	// У того, кто ни на кого не подписан, лента пуста
	empty, err := store.GetPosts(ctx, storage.PostFilter{FollowerID: bob.ID}, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStore_DeleteUser_Cascade(t *testing.T) {
	store, leo, anna, _ := newTestStore(t)
	ctx := context.Background()

	annaPost := createPosts(t, store, anna.ID, nil, 1)[0]
	leoPost := createPosts(t, store, leo.ID, nil, 1)[0]
	_, err := store.CreateComment(ctx, &domain.Comment{PostID: annaPost.ID, AuthorID: leo.ID, Text: "nice"})
	require.NoError(t, err)
	annaComment, err := store.CreateComment(ctx, &domain.Comment{PostID: leoPost.ID, AuthorID: anna.ID, Text: "thanks"})
	require.NoError(t, err)
	require.NoError(t, store.Follow(ctx, leo.ID, anna.ID))
	require.NoError(t, store.Follow(ctx, anna.ID, leo.ID))

	require.NoError(t, store.DeleteUser(ctx, anna.ID))

	_, err = store.GetPostByID(ctx, annaPost.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	feed, err := store.GetPosts(ctx, storage.PostFilter{FollowerID: leo.ID}, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, feed)

	follows, err := store.GetFollows(ctx, leo.ID)
	require.NoError(t, err)
	assert.Empty(t, follows)

	comments, err := store.GetCommentsByPostID(ctx, leoPost.ID)
	require.NoError(t, err)
	for _, c := range comments {
		assert.NotEqual(t, annaComment.ID, c.ID)
	}
	assert.Empty(t, comments)

	assert.ErrorIs(t, store.DeleteUser(ctx, anna.ID), storage.ErrNotFound)
}

func TestStore_DeleteGroup_KeepsPosts(t *testing.T) {
	store, leo, _, group := newTestStore(t)
	ctx := context.Background()

	post := createPosts(t, store, leo.ID, &group.ID, 1)[0]

	require.NoError(t, store.DeleteGroup(ctx, group.ID))

	stored, err := store.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.GroupID)

	_, err = store.GetGroupBySlug(ctx, "cats")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_UpdateGroup_SlugConflict(t *testing.T) {
	store, _, _, group := newTestStore(t)
	ctx := context.Background()

	dogs, err := store.CreateGroup(ctx, &domain.Group{Title: "Dogs", Slug: "dogs"})
	require.NoError(t, err)

	_, err = store.UpdateGroup(ctx, &domain.Group{ID: dogs.ID, Title: "Dogs", Slug: group.Slug})
	assert.ErrorIs(t, err, storage.ErrConflict)

	renamed, err := store.UpdateGroup(ctx, &domain.Group{ID: dogs.ID, Title: "Puppies", Slug: "puppies"})
	require.NoError(t, err)
	assert.Equal(t, "puppies", renamed.Slug)

	_, err = store.GetGroupBySlug(ctx, "dogs")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_Comments(t *testing.T) {
	store, leo, anna, _ := newTestStore(t)
	ctx := context.Background()

	post := createPosts(t, store, leo.ID, nil, 1)[0]

	first, err := store.CreateComment(ctx, &domain.Comment{PostID: post.ID, AuthorID: anna.ID, Text: "first"})
	require.NoError(t, err)
	second, err := store.CreateComment(ctx, &domain.Comment{PostID: post.ID, AuthorID: leo.ID, Text: "second"})
	require.NoError(t, err)

	comments, err := store.GetCommentsByPostID(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, second.ID, comments[0].ID)
	assert.Equal(t, first.ID, comments[1].ID)

	_, err = store.CreateComment(ctx, &domain.Comment{PostID: "missing", AuthorID: leo.ID, Text: "x"})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Удаление поста удаляет его комментарии
	require.NoError(t, store.DeletePost(ctx, post.ID))
	comments, err = store.GetCommentsByPostID(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestStore_BatchLookups(t *testing.T) {
	store, leo, anna, group := newTestStore(t)
	ctx := context.Background()

	users, err := store.GetUsersByIDs(ctx, []string{leo.ID, anna.ID, "missing"})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "leo", users[leo.ID].Username)

	groups, err := store.GetGroupsByIDs(ctx, []string{group.ID, "missing"})
	require.NoError(t, err)
	assert.Len(t, groups, 1)
	assert.Equal(t, "cats", groups[group.ID].Slug)
}
