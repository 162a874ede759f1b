// Package live рассылает новые комментарии подписчикам поста.
package live

import (
	"sync"

	"github.com/google/uuid"

	"github.com/UkralStul/yatube-service/internal/domain"
)

// CommentObserver хранит каналы для подписчиков на комментарии.
type CommentObserver struct {
	mu sync.RWMutex
	//          map[postID] map[subscriberID] channel
	subs map[string]map[string]chan *domain.Comment
}

func NewCommentObserver() *CommentObserver {
	return &CommentObserver{
		subs: make(map[string]map[string]chan *domain.Comment),
	}
}

// Subscribe регистрирует подписчика на комментарии поста postID.
// Вызов cancel отписывает и закрывает канал; повторный вызов безопасен.
func (o *CommentObserver) Subscribe(postID string) (<-chan *domain.Comment, func()) {
	ch := make(chan *domain.Comment, 8)
	subID := uuid.NewString()

	o.mu.Lock()
	if o.subs[postID] == nil {
		o.subs[postID] = make(map[string]chan *domain.Comment)
	}
	o.subs[postID][subID] = ch
	o.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			o.mu.Lock()
			if postSubs, ok := o.subs[postID]; ok {
				delete(postSubs, subID)
				if len(postSubs) == 0 {
					delete(o.subs, postID)
				}
			}
			o.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish отправляет комментарий всем подписчикам его поста.
// Подписчик с заполненным буфером этот комментарий пропускает.
func (o *CommentObserver) Publish(c *domain.Comment) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, ch := range o.subs[c.PostID] {
		select {
		case ch <- c:
		default:
		}
	}
}

// Subscribers возвращает число подписчиков поста.
func (o *CommentObserver) Subscribers(postID string) int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.subs[postID])
}
