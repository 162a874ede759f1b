package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UkralStul/yatube-service/internal/auth"
	"github.com/UkralStul/yatube-service/internal/cache"
	"github.com/UkralStul/yatube-service/internal/config"
	"github.com/UkralStul/yatube-service/internal/domain"
	"github.com/UkralStul/yatube-service/internal/handlers"
	"github.com/UkralStul/yatube-service/internal/live"
	"github.com/UkralStul/yatube-service/internal/storage"
	"github.com/UkralStul/yatube-service/internal/storage/inmemory"
	"github.com/UkralStul/yatube-service/internal/storage/postgres"
)

// indexCacheSize - сколько страниц главной держит кеш
const indexCacheSize = 128

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	envFile := flag.String("env", ".env", "Path to .env file")
	storageType := flag.String("storage", "", "Storage type (in-memory or postgres), overrides config")
	seed := flag.Bool("seed", false, "Fill storage with demo data (always on for in-memory)")
	flag.Parse()

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *storageType != "" {
		cfg.Storage = *storageType
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store storage.Storage

	log.Printf("Starting server with %s storage", cfg.Storage)
	if cfg.Storage == config.StoragePostgres {
		pg, err := postgres.New(ctx, cfg.DatabaseURL, postgres.Options{
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
			LogSQL:          cfg.LogSQL,
		})
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pg.Close()
		store = pg
	} else {
		store = inmemory.New()
		// Заполним данными для тестов
		*seed = true
	}
	if *seed {
		fillWithMockData(store, []byte(cfg.JWTSecret))
	}

	h := &handlers.Handler{
		Storage:            store,
		Observer:           live.NewCommentObserver(),
		IndexCache:         cache.NewPageCache(indexCacheSize, cfg.IndexCacheTTL),
		Secret:             []byte(cfg.JWTSecret),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("graceful shutdown failed: %v", err)
		}
	}()

	log.Printf("listening on http://localhost:%s/", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server failed to start: %v", err)
	}
	log.Print("server stopped")
}

func fillWithMockData(s storage.Storage, secret []byte) {
	ctx := context.Background()

	// Повторный запуск на той же базе данные не дублирует
	if _, err := s.GetUserByUsername(ctx, "leo"); err == nil {
		log.Print("fillWithMockData: demo data already present")
		return
	}

	// 1. Пользователи
	leo, err := s.CreateUser(ctx, &domain.User{Username: "leo"})
	if err != nil {
		log.Fatalf("fillWithMockData: failed to create user leo: %v", err)
	}
	anna, err := s.CreateUser(ctx, &domain.User{Username: "anna"})
	if err != nil {
		log.Fatalf("fillWithMockData: failed to create user anna: %v", err)
	}

	// 2. Группа
	group, err := s.CreateGroup(ctx, &domain.Group{
		Title:       "Котики",
		Slug:        "cats",
		Description: "Всё о котах",
	})
	if err != nil {
		log.Fatalf("fillWithMockData: failed to create group: %v", err)
	}

	// 3. Посты: в группе и без неё
	post, err := s.CreatePost(ctx, &domain.Post{
		Text:     "Первый пост в группе про котов.",
		AuthorID: leo.ID,
		GroupID:  &group.ID,
	})
	if err != nil {
		log.Fatalf("fillWithMockData: failed to create post: %v", err)
	}
	if _, err := s.CreatePost(ctx, &domain.Post{
		Text:     "Пост без группы.",
		AuthorID: anna.ID,
	}); err != nil {
		log.Fatalf("fillWithMockData: failed to create post: %v", err)
	}

	// 4. Комментарий и подписка anna -> leo
	if _, err := s.CreateComment(ctx, &domain.Comment{
		PostID:   post.ID,
		AuthorID: anna.ID,
		Text:     "Отличный пост!",
	}); err != nil {
		log.Fatalf("fillWithMockData: failed to create comment: %v", err)
	}
	if err := s.Follow(ctx, anna.ID, leo.ID); err != nil {
		log.Fatalf("fillWithMockData: failed to follow: %v", err)
	}

	log.Printf("Mock data filled successfully. Created post ID: %s, group slug: %s", post.ID, group.Slug)
	for _, u := range []*domain.User{leo, anna} {
		token, err := auth.IssueToken(secret, u.Username, false, 24*time.Hour)
		if err != nil {
			log.Fatalf("fillWithMockData: failed to issue token: %v", err)
		}
		log.Printf("demo token for %s: %s", u.Username, token)
	}
}
