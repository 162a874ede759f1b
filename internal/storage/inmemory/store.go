package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/UkralStul/yatube-service/internal/domain"
	"github.com/UkralStul/yatube-service/internal/paginator"
	"github.com/UkralStul/yatube-service/internal/storage"
	"github.com/google/uuid"
)

type followKey struct {
	userID   string
	authorID string
}

// Store реализует интерфейс Storage в памяти.
// Наружу отдаются копии записей, поэтому вызывающий код не может изменить состояние хранилища.
type Store struct {
	mu             sync.RWMutex
	users          map[string]*domain.User
	usernames      map[string]string // map[username]userID
	groups         map[string]*domain.Group
	slugs          map[string]string // map[slug]groupID
	posts          map[string]*domain.Post
	postOrder      []string // ID постов в порядке вставки
	comments       map[string]*domain.Comment
	commentsByPost map[string][]string // map[postID][]commentID
	follows        map[followKey]*domain.Follow
}

// New создает новый экземпляр in-memory хранилища.
func New() *Store {
	return &Store{
		users:          make(map[string]*domain.User),
		usernames:      make(map[string]string),
		groups:         make(map[string]*domain.Group),
		slugs:          make(map[string]string),
		posts:          make(map[string]*domain.Post),
		comments:       make(map[string]*domain.Comment),
		commentsByPost: make(map[string][]string),
		follows:        make(map[followKey]*domain.Follow),
	}
}

var _ storage.Storage = (*Store)(nil)

// === User Methods ===

func (s *Store) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.usernames[user.Username]; ok {
		return nil, fmt.Errorf("user %q: %w", user.Username, storage.ErrConflict)
	}

	u := *user
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now().UTC()
	s.users[u.ID] = &u
	s.usernames[u.Username] = u.ID

	out := u
	return &out, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user with id %s: %w", id, storage.ErrNotFound)
	}
	out := *u
	return &out, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usernames[username]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", username, storage.ErrNotFound)
	}
	out := *s.users[id]
	return &out, nil
}

// DeleteUser удаляет пользователя вместе с его постами, комментариями и подписками.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user with id %s: %w", id, storage.ErrNotFound)
	}

	for postID, p := range s.posts {
		if p.AuthorID == id {
			s.deletePostLocked(postID)
		}
	}
	for commentID, c := range s.comments {
		if c.AuthorID == id {
			s.deleteCommentLocked(commentID)
		}
	}
	for key := range s.follows {
		if key.userID == id || key.authorID == id {
			delete(s.follows, key)
		}
	}

	delete(s.usernames, u.Username)
	delete(s.users, id)
	return nil
}

// === Group Methods ===

func (s *Store) CreateGroup(ctx context.Context, group *domain.Group) (*domain.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.slugs[group.Slug]; ok {
		return nil, fmt.Errorf("group %q: %w", group.Slug, storage.ErrConflict)
	}

	g := *group
	g.ID = uuid.NewString()
	s.groups[g.ID] = &g
	s.slugs[g.Slug] = g.ID

	out := g
	return &out, nil
}

func (s *Store) UpdateGroup(ctx context.Context, group *domain.Group) (*domain.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.groups[group.ID]
	if !ok {
		return nil, fmt.Errorf("group with id %s: %w", group.ID, storage.ErrNotFound)
	}
	if ownerID, taken := s.slugs[group.Slug]; taken && ownerID != group.ID {
		return nil, fmt.Errorf("group %q: %w", group.Slug, storage.ErrConflict)
	}

	delete(s.slugs, existing.Slug)
	existing.Title = group.Title
	existing.Slug = group.Slug
	existing.Description = group.Description
	s.slugs[existing.Slug] = existing.ID

	out := *existing
	return &out, nil
}

func (s *Store) GetGroupByID(ctx context.Context, id string) (*domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.groups[id]
	if !ok {
		return nil, fmt.Errorf("group with id %s: %w", id, storage.ErrNotFound)
	}
	out := *g
	return &out, nil
}

func (s *Store) GetGroupBySlug(ctx context.Context, slug string) (*domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.slugs[slug]
	if !ok {
		return nil, fmt.Errorf("group %q: %w", slug, storage.ErrNotFound)
	}
	out := *s.groups[id]
	return &out, nil
}

func (s *Store) GetGroups(ctx context.Context) ([]*domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]*domain.Group, 0, len(s.groups))
	for _, g := range s.groups {
		out := *g
		groups = append(groups, &out)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Title == groups[j].Title {
			return groups[i].Slug < groups[j].Slug
		}
		return groups[i].Title < groups[j].Title
	})
	return groups, nil
}

// DeleteGroup удаляет группу; посты группы остаются без группы.
func (s *Store) DeleteGroup(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[id]
	if !ok {
		return fmt.Errorf("group with id %s: %w", id, storage.ErrNotFound)
	}
	for _, p := range s.posts {
		if p.GroupID != nil && *p.GroupID == id {
			p.GroupID = nil
		}
	}
	delete(s.slugs, g.Slug)
	delete(s.groups, id)
	return nil
}

// === Post Methods ===

func (s *Store) CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[post.AuthorID]; !ok {
		return nil, fmt.Errorf("author with id %s: %w", post.AuthorID, storage.ErrNotFound)
	}
	if err := s.checkGroupLocked(post.GroupID); err != nil {
		return nil, err
	}

	p := clonePost(post)
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	s.posts[p.ID] = p
	s.postOrder = append(s.postOrder, p.ID)

	return clonePost(p), nil
}

func (s *Store) GetPostByID(ctx context.Context, id string) (*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, fmt.Errorf("post with id %s: %w", id, storage.ErrNotFound)
	}
	return clonePost(p), nil
}

// UpdatePost меняет текст, группу и картинку поста. Автор и дата создания не меняются.
func (s *Store) UpdatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.posts[post.ID]
	if !ok {
		return nil, fmt.Errorf("post with id %s: %w", post.ID, storage.ErrNotFound)
	}
	if err := s.checkGroupLocked(post.GroupID); err != nil {
		return nil, err
	}

	updated := clonePost(post)
	existing.Text = updated.Text
	existing.GroupID = updated.GroupID
	existing.Image = updated.Image
	return clonePost(existing), nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return fmt.Errorf("post with id %s: %w", id, storage.ErrNotFound)
	}
	s.deletePostLocked(id)
	return nil
}

// === Pagination Methods ===

func (s *Store) CountPosts(ctx context.Context, filter storage.PostFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, p := range s.posts {
		if s.matchLocked(p, filter) {
			n++
		}
	}
	return n, nil
}

func (s *Store) GetPosts(ctx context.Context, filter storage.PostFilter, limit, offset int) ([]*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Идём от последних вставленных, чтобы при равном времени создания новые были выше.
	matched := make([]*domain.Post, 0, len(s.postOrder))
	for i := len(s.postOrder) - 1; i >= 0; i-- {
		p := s.posts[s.postOrder[i]]
		if s.matchLocked(p, filter) {
			matched = append(matched, p)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	page := paginator.Slice(matched, offset, limit)
	posts := make([]*domain.Post, len(page))
	for i, p := range page {
		posts[i] = clonePost(p)
	}
	return posts, nil
}

// === Comment Methods ===

func (s *Store) CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[comment.PostID]; !ok {
		return nil, fmt.Errorf("post with id %s: %w", comment.PostID, storage.ErrNotFound)
	}
	if _, ok := s.users[comment.AuthorID]; !ok {
		return nil, fmt.Errorf("author with id %s: %w", comment.AuthorID, storage.ErrNotFound)
	}

	c := *comment
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()
	s.comments[c.ID] = &c
	s.commentsByPost[c.PostID] = append(s.commentsByPost[c.PostID], c.ID)

	out := c
	return &out, nil
}

// GetCommentsByPostID возвращает комментарии поста, новые первыми.
func (s *Store) GetCommentsByPostID(ctx context.Context, postID string) ([]*domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.commentsByPost[postID]
	comments := make([]*domain.Comment, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		if c, ok := s.comments[ids[i]]; ok {
			out := *c
			comments = append(comments, &out)
		}
	}
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
	return comments, nil
}

// === Follow Methods ===

func (s *Store) Follow(ctx context.Context, userID, authorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if userID == authorID {
		return nil
	}
	if _, ok := s.users[userID]; !ok {
		return nil
	}
	if _, ok := s.users[authorID]; !ok {
		return nil
	}

	key := followKey{userID: userID, authorID: authorID}
	if _, ok := s.follows[key]; ok {
		return nil
	}
	s.follows[key] = &domain.Follow{
		ID:        uuid.NewString(),
		UserID:    userID,
		AuthorID:  authorID,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

func (s *Store) Unfollow(ctx context.Context, userID, authorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.follows, followKey{userID: userID, authorID: authorID})
	return nil
}

func (s *Store) IsFollowing(ctx context.Context, userID, authorID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.follows[followKey{userID: userID, authorID: authorID}]
	return ok, nil
}

// GetFollows возвращает подписки пользователя в порядке их создания.
func (s *Store) GetFollows(ctx context.Context, userID string) ([]*domain.Follow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	follows := make([]*domain.Follow, 0)
	for key, f := range s.follows {
		if key.userID == userID {
			out := *f
			follows = append(follows, &out)
		}
	}
	sort.Slice(follows, func(i, j int) bool {
		return follows[i].CreatedAt.Before(follows[j].CreatedAt)
	})
	return follows, nil
}

// === Dataloader Methods ===

func (s *Store) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*domain.User, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out := *u
			result[id] = &out
		}
	}
	return result, nil
}

func (s *Store) GetGroupsByIDs(ctx context.Context, ids []string) (map[string]*domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*domain.Group, len(ids))
	for _, id := range ids {
		if g, ok := s.groups[id]; ok {
			out := *g
			result[id] = &out
		}
	}
	return result, nil
}

// === helpers (вызываются под блокировкой) ===

func (s *Store) matchLocked(p *domain.Post, f storage.PostFilter) bool {
	if f.AuthorID != "" && p.AuthorID != f.AuthorID {
		return false
	}
	if f.GroupID != "" && (p.GroupID == nil || *p.GroupID != f.GroupID) {
		return false
	}
	if f.FollowerID != "" {
		if _, ok := s.follows[followKey{userID: f.FollowerID, authorID: p.AuthorID}]; !ok {
			return false
		}
	}
	return true
}

func (s *Store) checkGroupLocked(groupID *string) error {
	if groupID == nil {
		return nil
	}
	if _, ok := s.groups[*groupID]; !ok {
		return fmt.Errorf("group with id %s: %w", *groupID, storage.ErrNotFound)
	}
	return nil
}

func (s *Store) deletePostLocked(id string) {
	for _, commentID := range s.commentsByPost[id] {
		delete(s.comments, commentID)
	}
	delete(s.commentsByPost, id)
	delete(s.posts, id)

	for i, postID := range s.postOrder {
		if postID == id {
			s.postOrder = append(s.postOrder[:i], s.postOrder[i+1:]...)
			break
		}
	}
}

func (s *Store) deleteCommentLocked(id string) {
	c, ok := s.comments[id]
	if !ok {
		return
	}
	ids := s.commentsByPost[c.PostID]
	for i, commentID := range ids {
		if commentID == id {
			s.commentsByPost[c.PostID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	delete(s.comments, id)
}

func clonePost(p *domain.Post) *domain.Post {
	out := *p
	if p.GroupID != nil {
		groupID := *p.GroupID
		out.GroupID = &groupID
	}
	return &out
}
