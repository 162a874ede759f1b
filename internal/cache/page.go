// Package cache кеширует готовые ответы страниц на короткое время.
package cache

import (
	"bytes"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultTTL - время жизни закешированной главной страницы.
const DefaultTTL = 20 * time.Second

type entry struct {
	contentType string
	body        []byte
}

// PageCache хранит тела успешных GET-ответов по URI запроса.
type PageCache struct {
	lru *expirable.LRU[string, entry]
}

// NewPageCache создаёт кеш на size страниц. При ttl <= 0 кеш выключен
// и Middleware пропускает запросы как есть.
func NewPageCache(size int, ttl time.Duration) *PageCache {
	if ttl <= 0 {
		return &PageCache{}
	}
	return &PageCache{lru: expirable.NewLRU[string, entry](size, nil, ttl)}
}

// Middleware отдаёт ответ из кеша или запоминает свежий ответ со статусом 200.
func (c *PageCache) Middleware(next http.Handler) http.Handler {
	if c.lru == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		key := r.URL.RequestURI()
		if e, ok := c.lru.Get(key); ok {
			w.Header().Set("Content-Type", e.contentType)
			w.Header().Set("X-Cache", "HIT")
			_, _ = w.Write(e.body)
			return
		}

		var buf bytes.Buffer
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ww.Tee(&buf)
		next.ServeHTTP(ww, r)

		if ww.Status() == http.StatusOK {
			c.lru.Add(key, entry{
				contentType: ww.Header().Get("Content-Type"),
				body:        buf.Bytes(),
			})
		}
	})
}

// Purge удаляет все страницы из кеша.
func (c *PageCache) Purge() {
	if c.lru != nil {
		c.lru.Purge()
	}
}

// Len возвращает число закешированных страниц.
func (c *PageCache) Len() int {
	if c.lru == nil {
		return 0
	}
	return c.lru.Len()
}
