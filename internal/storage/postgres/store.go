package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/UkralStul/yatube-service/internal/domain"
	"github.com/UkralStul/yatube-service/internal/storage"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Options задаёт параметры пула соединений и логирования SQL.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogSQL          bool
}

// Store реализует интерфейс Storage с использованием PostgreSQL.
type Store struct {
	db *gorm.DB
}

var _ storage.Storage = (*Store)(nil)

// New подключается к базе, применяет миграции и возвращает хранилище.
func New(ctx context.Context, dsn string, opts Options) (*Store, error) {
	logLevel := logger.Warn
	if opts.LogSQL {
		logLevel = logger.Info
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	// Схема описана SQL-миграциями: внешние ключи с каскадами и уникальная пара подписки
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close закрывает пул соединений.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// === User Methods ===

func (s *Store) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	u := *user
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("user %q", user.Username))
	}
	return &u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err, "user with id "+id)
	}
	return &user, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("user %q", username))
	}
	return &user, nil
}

// DeleteUser удаляет пользователя; посты, комментарии и подписки удаляются каскадом в БД.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&domain.User{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "user with id "+id)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with id %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// === Group Methods ===

func (s *Store) CreateGroup(ctx context.Context, group *domain.Group) (*domain.Group, error) {
	g := *group
	if err := s.db.WithContext(ctx).Create(&g).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("group %q", group.Slug))
	}
	return &g, nil
}

func (s *Store) UpdateGroup(ctx context.Context, group *domain.Group) (*domain.Group, error) {
	var existing domain.Group
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&existing, "id = ?", group.ID).Error; err != nil {
			return err
		}
		existing.Title = group.Title
		existing.Slug = group.Slug
		existing.Description = group.Description
		return tx.Save(&existing).Error
	})
	if err != nil {
		return nil, translate(err, fmt.Sprintf("group %q", group.Slug))
	}
	return &existing, nil
}

func (s *Store) GetGroupByID(ctx context.Context, id string) (*domain.Group, error) {
	var group domain.Group
	if err := s.db.WithContext(ctx).First(&group, "id = ?", id).Error; err != nil {
		return nil, translate(err, "group with id "+id)
	}
	return &group, nil
}

func (s *Store) GetGroupBySlug(ctx context.Context, slug string) (*domain.Group, error) {
	var group domain.Group
	if err := s.db.WithContext(ctx).First(&group, "slug = ?", slug).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("group %q", slug))
	}
	return &group, nil
}

func (s *Store) GetGroups(ctx context.Context) ([]*domain.Group, error) {
	var groups []*domain.Group
	err := s.db.WithContext(ctx).Order("title, slug").Find(&groups).Error
	return groups, err
}

// DeleteGroup удаляет группу; у постов группы group_id становится NULL (ON DELETE SET NULL).
func (s *Store) DeleteGroup(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&domain.Group{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "group with id "+id)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("group with id %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// === Post Methods ===

func (s *Store) CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	p := *post
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		// Нарушение внешнего ключа означает, что автора или группы нет
		return nil, translate(err, "post")
	}
	// GORM автоматически заполнит ID и CreatedAt после создания
	return &p, nil
}

func (s *Store) GetPostByID(ctx context.Context, id string) (*domain.Post, error) {
	var post domain.Post
	if err := s.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, translate(err, "post with id "+id)
	}
	return &post, nil
}

func (s *Store) UpdatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	var existing domain.Post
	// Используем транзакцию для атомарности операции чтения-записи
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&existing, "id = ?", post.ID).Error; err != nil {
			return err
		}
		existing.Text = post.Text
		existing.GroupID = post.GroupID
		existing.Image = post.Image
		return tx.Save(&existing).Error
	})
	if err != nil {
		return nil, translate(err, "post with id "+post.ID)
	}
	return &existing, nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&domain.Post{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "post with id "+id)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("post with id %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// === Pagination Methods ===

func (s *Store) CountPosts(ctx context.Context, filter storage.PostFilter) (int, error) {
	var n int64
	if err := s.postsQuery(ctx, filter).Count(&n).Error; err != nil {
		return 0, translateEmpty(err)
	}
	return int(n), nil
}

func (s *Store) GetPosts(ctx context.Context, filter storage.PostFilter, limit, offset int) ([]*domain.Post, error) {
	var posts []*domain.Post
	err := s.postsQuery(ctx, filter).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, translateEmpty(err)
	}
	return posts, nil
}

// postsQuery строит выборку постов по фильтру. Лента - один запрос с подзапросом по подпискам.
func (s *Store) postsQuery(ctx context.Context, f storage.PostFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&domain.Post{})
	if f.AuthorID != "" {
		q = q.Where("author_id = ?", f.AuthorID)
	}
	if f.GroupID != "" {
		q = q.Where("group_id = ?", f.GroupID)
	}
	if f.FollowerID != "" {
		following := s.db.WithContext(ctx).Model(&domain.Follow{}).Select("author_id").Where("user_id = ?", f.FollowerID)
		q = q.Where("author_id IN (?)", following)
	}
	return q
}

// === Comment Methods ===

func (s *Store) CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	c := *comment
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, translate(err, "comment")
	}
	return &c, nil
}

func (s *Store) GetCommentsByPostID(ctx context.Context, postID string) ([]*domain.Comment, error) {
	var comments []*domain.Comment
	err := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return nil, translateEmpty(err)
	}
	return comments, nil
}

// === Follow Methods ===

func (s *Store) Follow(ctx context.Context, userID, authorID string) error {
	if userID == authorID {
		return nil
	}
	follow := &domain.Follow{UserID: userID, AuthorID: authorID}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(follow).Error
	if isPgError(err, pgerrcode.ForeignKeyViolation) || isPgError(err, pgerrcode.InvalidTextRepresentation) {
		// Подписка на несуществующего пользователя ничего не меняет
		return nil
	}
	return err
}

func (s *Store) Unfollow(ctx context.Context, userID, authorID string) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&domain.Follow{}).Error
	if isPgError(err, pgerrcode.InvalidTextRepresentation) {
		return nil
	}
	return err
}

func (s *Store) IsFollowing(ctx context.Context, userID, authorID string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&domain.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&n).Error
	if err != nil {
		if isPgError(err, pgerrcode.InvalidTextRepresentation) {
			return false, nil
		}
		return false, err
	}
	return n > 0, nil
}

func (s *Store) GetFollows(ctx context.Context, userID string) ([]*domain.Follow, error) {
	var follows []*domain.Follow
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&follows).Error
	if err != nil {
		return nil, translateEmpty(err)
	}
	return follows, nil
}

// === Dataloader Methods ===

func (s *Store) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	result := make(map[string]*domain.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var users []*domain.User
	// Загружаем всех пользователей одним запросом
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}

func (s *Store) GetGroupsByIDs(ctx context.Context, ids []string) (map[string]*domain.Group, error) {
	result := make(map[string]*domain.Group, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var groups []*domain.Group
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&groups).Error; err != nil {
		return nil, err
	}
	for _, g := range groups {
		result[g.ID] = g
	}
	return result, nil
}

// === Errors ===

// translate приводит ошибки GORM и PostgreSQL к ошибкам пакета storage.
func translate(err error, what string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound),
		isPgError(err, pgerrcode.ForeignKeyViolation),
		isPgError(err, pgerrcode.InvalidTextRepresentation):
		return fmt.Errorf("%s: %w", what, storage.ErrNotFound)
	case isPgError(err, pgerrcode.UniqueViolation):
		return fmt.Errorf("%s: %w", what, storage.ErrConflict)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

// translateEmpty используется для выборок: некорректный uuid в фильтре даёт пустой результат.
func translateEmpty(err error) error {
	if isPgError(err, pgerrcode.InvalidTextRepresentation) {
		return nil
	}
	return err
}

func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
