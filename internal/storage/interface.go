package storage

import (
	"context"
	"errors"

	"github.com/UkralStul/yatube-service/internal/domain"
)

var (
	// ErrNotFound возвращается, если запрошенная запись не существует.
	ErrNotFound = errors.New("not found")
	// ErrConflict возвращается при нарушении уникальности (username, slug).
	ErrConflict = errors.New("already exists")
)

// PostFilter ограничивает выборку постов. Пустые поля не участвуют в фильтрации.
type PostFilter struct {
	AuthorID string
	GroupID  string
	// FollowerID выбирает посты авторов, на которых подписан пользователь (лента).
	FollowerID string
}

// Storage определяет контракт для хранилищ.
type Storage interface {
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error

	CreateGroup(ctx context.Context, group *domain.Group) (*domain.Group, error)
	UpdateGroup(ctx context.Context, group *domain.Group) (*domain.Group, error)
	GetGroupByID(ctx context.Context, id string) (*domain.Group, error)
	GetGroupBySlug(ctx context.Context, slug string) (*domain.Group, error)
	GetGroups(ctx context.Context) ([]*domain.Group, error)
	DeleteGroup(ctx context.Context, id string) error

	CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error)
	GetPostByID(ctx context.Context, id string) (*domain.Post, error)
	UpdatePost(ctx context.Context, post *domain.Post) (*domain.Post, error)
	DeletePost(ctx context.Context, id string) error

	// Методы для пагинации
	CountPosts(ctx context.Context, filter PostFilter) (int, error)
	GetPosts(ctx context.Context, filter PostFilter, limit, offset int) ([]*domain.Post, error)

	CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error)
	GetCommentsByPostID(ctx context.Context, postID string) ([]*domain.Comment, error)

	// Follow идемпотентен: подписка на себя, на несуществующего автора
	// и повторная подписка ничего не меняют.
	Follow(ctx context.Context, userID, authorID string) error
	Unfollow(ctx context.Context, userID, authorID string) error
	IsFollowing(ctx context.Context, userID, authorID string) (bool, error)
	GetFollows(ctx context.Context, userID string) ([]*domain.Follow, error)

	// Методы для Dataloader'ов
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)
	GetGroupsByIDs(ctx context.Context, ids []string) (map[string]*domain.Group, error)
}
