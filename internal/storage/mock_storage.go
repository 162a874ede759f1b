package storage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/UkralStul/yatube-service/internal/domain"
)

// MockStorage - реализация Storage на testify/mock для тестов обработчиков.
// Возвращаемые nil-указатели допустимы: значения приводятся без паники.
type MockStorage struct {
	mock.Mock
}

var _ Storage = (*MockStorage)(nil)

func (m *MockStorage) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	args := m.Called(ctx, user)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *MockStorage) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *MockStorage) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *MockStorage) DeleteUser(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStorage) CreateGroup(ctx context.Context, group *domain.Group) (*domain.Group, error) {
	args := m.Called(ctx, group)
	g, _ := args.Get(0).(*domain.Group)
	return g, args.Error(1)
}

func (m *MockStorage) UpdateGroup(ctx context.Context, group *domain.Group) (*domain.Group, error) {
	args := m.Called(ctx, group)
	g, _ := args.Get(0).(*domain.Group)
	return g, args.Error(1)
}

func (m *MockStorage) GetGroupByID(ctx context.Context, id string) (*domain.Group, error) {
	args := m.Called(ctx, id)
	g, _ := args.Get(0).(*domain.Group)
	return g, args.Error(1)
}

func (m *MockStorage) GetGroupBySlug(ctx context.Context, slug string) (*domain.Group, error) {
	args := m.Called(ctx, slug)
	g, _ := args.Get(0).(*domain.Group)
	return g, args.Error(1)
}

func (m *MockStorage) GetGroups(ctx context.Context) ([]*domain.Group, error) {
	args := m.Called(ctx)
	g, _ := args.Get(0).([]*domain.Group)
	return g, args.Error(1)
}

func (m *MockStorage) DeleteGroup(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStorage) CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	args := m.Called(ctx, post)
	p, _ := args.Get(0).(*domain.Post)
	return p, args.Error(1)
}

func (m *MockStorage) GetPostByID(ctx context.Context, id string) (*domain.Post, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*domain.Post)
	return p, args.Error(1)
}

func (m *MockStorage) UpdatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	args := m.Called(ctx, post)
	p, _ := args.Get(0).(*domain.Post)
	return p, args.Error(1)
}

func (m *MockStorage) DeletePost(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStorage) CountPosts(ctx context.Context, filter PostFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockStorage) GetPosts(ctx context.Context, filter PostFilter, limit, offset int) ([]*domain.Post, error) {
	args := m.Called(ctx, filter, limit, offset)
	p, _ := args.Get(0).([]*domain.Post)
	return p, args.Error(1)
}

func (m *MockStorage) CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	args := m.Called(ctx, comment)
	c, _ := args.Get(0).(*domain.Comment)
	return c, args.Error(1)
}

func (m *MockStorage) GetCommentsByPostID(ctx context.Context, postID string) ([]*domain.Comment, error) {
	args := m.Called(ctx, postID)
	c, _ := args.Get(0).([]*domain.Comment)
	return c, args.Error(1)
}

func (m *MockStorage) Follow(ctx context.Context, userID, authorID string) error {
	return m.Called(ctx, userID, authorID).Error(0)
}

func (m *MockStorage) Unfollow(ctx context.Context, userID, authorID string) error {
	return m.Called(ctx, userID, authorID).Error(0)
}

func (m *MockStorage) IsFollowing(ctx context.Context, userID, authorID string) (bool, error) {
	args := m.Called(ctx, userID, authorID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) GetFollows(ctx context.Context, userID string) ([]*domain.Follow, error) {
	args := m.Called(ctx, userID)
	f, _ := args.Get(0).([]*domain.Follow)
	return f, args.Error(1)
}

func (m *MockStorage) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	args := m.Called(ctx, ids)
	u, _ := args.Get(0).(map[string]*domain.User)
	return u, args.Error(1)
}

func (m *MockStorage) GetGroupsByIDs(ctx context.Context, ids []string) (map[string]*domain.Group, error) {
	args := m.Called(ctx, ids)
	g, _ := args.Get(0).(map[string]*domain.Group)
	return g, args.Error(1)
}
