// Package handlers - HTTP API сервиса поверх chi.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/UkralStul/yatube-service/internal/auth"
	"github.com/UkralStul/yatube-service/internal/cache"
	"github.com/UkralStul/yatube-service/internal/dataloader"
	"github.com/UkralStul/yatube-service/internal/live"
	"github.com/UkralStul/yatube-service/internal/storage"
)

// Handler содержит зависимости, которые нужны обработчикам.
type Handler struct {
	Storage    storage.Storage
	Observer   *live.CommentObserver
	IndexCache *cache.PageCache
	Secret     []byte
	// CORSAllowedOrigins пустой - CORS-заголовки не выставляются
	CORSAllowedOrigins []string
}

// Router собирает маршруты и middleware.
func (h *Handler) Router() http.Handler {
	if h.Observer == nil {
		h.Observer = live.NewCommentObserver()
	}
	if h.IndexCache == nil {
		h.IndexCache = cache.NewPageCache(0, 0)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)
	if len(h.CORSAllowedOrigins) > 0 {
		router.Use(cors.New(cors.Options{
			AllowedOrigins: h.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
		}).Handler)
	}
	router.Use(auth.Middleware(h.Secret))
	router.Use(dataloader.Middleware(h.Storage))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "page not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	router.With(h.IndexCache.Middleware).Get("/", h.index)
	router.Get("/groups", h.groups)
	router.Get("/group/{slug}", h.groupPosts)
	router.Get("/profile/{username}", h.profile)
	router.Get("/posts/{id}", h.postDetail)
	router.Get("/posts/{id}/comments/live", h.commentsLive)

	router.Group(func(r chi.Router) {
		r.Use(h.requireUser)

		r.Post("/create", h.createPost)
		r.Post("/posts/{id}/edit", h.editPost)
		r.Post("/posts/{id}/delete", h.deletePost)
		r.Post("/posts/{id}/comment", h.addComment)

		r.Get("/follow", h.followIndex)
		r.Get("/follow/authors", h.followAuthors)
		r.Post("/profile/{username}/follow", h.profileFollow)
		r.Post("/profile/{username}/unfollow", h.profileUnfollow)
	})

	router.Route("/admin", func(r chi.Router) {
		r.Use(requireAdmin)

		r.Post("/users", h.createUser)
		r.Delete("/users/{username}", h.deleteUser)
		r.Post("/groups", h.createGroup)
		r.Put("/groups/{slug}", h.updateGroup)
		r.Delete("/groups/{slug}", h.deleteGroup)
	})

	return router
}
