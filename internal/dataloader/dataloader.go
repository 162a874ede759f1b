package dataloader

import (
	"context"
	"net/http"
	"time"

	"github.com/UkralStul/yatube-service/internal/domain"
	"github.com/UkralStul/yatube-service/internal/storage"
	"github.com/graph-gophers/dataloader"
)

type contextKey string

const key = contextKey("dataloaders")

// batchWait - сколько лоадер ждёт остальные ключи перед запросом к хранилищу
var batchWait = time.Millisecond

// Loaders содержит все дата-лоадеры приложения.
type Loaders struct {
	UserByID  *dataloader.Loader
	GroupByID *dataloader.Loader
}

// NewLoaders создает лоадеры поверх хранилища. Лоадеры кешируют результаты,
// поэтому живут не дольше одного запроса.
func NewLoaders(store storage.Storage) *Loaders {
	users := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		users, err := store.GetUsersByIDs(ctx, keys.Keys())
		if err != nil {
			return errorResults(len(keys), err)
		}
		// Формируем результат в том же порядке, что и ключи
		results := make([]*dataloader.Result, len(keys))
		for i, k := range keys {
			results[i] = &dataloader.Result{Data: users[k.String()]}
		}
		return results
	}

	groups := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		groups, err := store.GetGroupsByIDs(ctx, keys.Keys())
		if err != nil {
			return errorResults(len(keys), err)
		}
		results := make([]*dataloader.Result, len(keys))
		for i, k := range keys {
			results[i] = &dataloader.Result{Data: groups[k.String()]}
		}
		return results
	}

	return &Loaders{
		UserByID:  dataloader.NewBatchedLoader(users, dataloader.WithWait(batchWait)),
		GroupByID: dataloader.NewBatchedLoader(groups, dataloader.WithWait(batchWait)),
	}
}

// Middleware для внедрения лоадеров в контекст запроса.
func Middleware(store storage.Storage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), key, NewLoaders(store))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// For извлекает лоадеры из контекста.
func For(ctx context.Context) *Loaders {
	return ctx.Value(key).(*Loaders)
}

// Users загружает пользователей пачкой. Отсутствующие ID в результат не попадают.
func (l *Loaders) Users(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	ids = unique(ids)
	if len(ids) == 0 {
		return map[string]*domain.User{}, nil
	}
	values, errs := l.UserByID.LoadMany(ctx, dataloader.NewKeysFromStrings(ids))()
	if err := firstError(errs); err != nil {
		return nil, err
	}
	result := make(map[string]*domain.User, len(values))
	for _, v := range values {
		if u, ok := v.(*domain.User); ok && u != nil {
			result[u.ID] = u
		}
	}
	return result, nil
}

// Groups загружает группы пачкой. Отсутствующие ID в результат не попадают.
func (l *Loaders) Groups(ctx context.Context, ids []string) (map[string]*domain.Group, error) {
	ids = unique(ids)
	if len(ids) == 0 {
		return map[string]*domain.Group{}, nil
	}
	values, errs := l.GroupByID.LoadMany(ctx, dataloader.NewKeysFromStrings(ids))()
	if err := firstError(errs); err != nil {
		return nil, err
	}
	result := make(map[string]*domain.Group, len(values))
	for _, v := range values {
		if g, ok := v.(*domain.Group); ok && g != nil {
			result[g.ID] = g
		}
	}
	return result, nil
}

func errorResults(n int, err error) []*dataloader.Result {
	// В случае ошибки, возвращаем ее для всех ключей
	results := make([]*dataloader.Result, n)
	for i := range results {
		results[i] = &dataloader.Result{Error: err}
	}
	return results
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
