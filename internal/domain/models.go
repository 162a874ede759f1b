package domain

import "time"

// User представляет автора постов и комментариев.
type User struct {
	ID        string    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Username  string    `json:"username" gorm:"type:varchar(150);not null;uniqueIndex"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null;default:now()"`
}

// Group представляет сообщество, к которому может относиться пост.
type Group struct {
	ID          string `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Title       string `json:"title" gorm:"type:varchar(200);not null"`
	Slug        string `json:"slug" gorm:"type:varchar(50);not null;uniqueIndex"`
	Description string `json:"description" gorm:"type:text;not null;default:''"`
}

// Post представляет пост в системе.
// При удалении автора посты удаляются, при удалении группы GroupID становится nil.
type Post struct {
	ID        string    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	AuthorID  string    `json:"authorId" gorm:"type:uuid;not null;index"`
	GroupID   *string   `json:"groupId,omitempty" gorm:"type:uuid;index"`
	Image     string    `json:"image,omitempty" gorm:"type:varchar(255);not null;default:''"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null;default:now();index"`
}

// Comment представляет комментарий к посту.
type Comment struct {
	ID        string    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PostID    string    `json:"postId" gorm:"type:uuid;not null;index"`
	AuthorID  string    `json:"authorId" gorm:"type:uuid;not null;index"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null;default:now()"`
}

// Follow - подписка пользователя UserID на автора AuthorID.
// Пара (UserID, AuthorID) уникальна.
type Follow struct {
	ID        string    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    string    `json:"userId" gorm:"type:uuid;not null;uniqueIndex:follows_user_author_key"`
	AuthorID  string    `json:"authorId" gorm:"type:uuid;not null;uniqueIndex:follows_user_author_key;index"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null;default:now()"`
}
