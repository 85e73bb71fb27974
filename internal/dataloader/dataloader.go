package dataloader

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/UkralStul/blog-service/internal/domain"

	"github.com/graph-gophers/dataloader"
)

type contextKey string

const key = contextKey("dataloaders")

// UserStore - метод хранилища, который делает один запрос на пачку ключей.
type UserStore interface {
	GetUsersByIDs(ctx context.Context, ids []uint) (map[uint]*domain.User, error)
}

// Loaders содержит все дата-лоадеры приложения.
type Loaders struct {
	UserByID *dataloader.Loader
}

// NewLoaders создает лоадеры для одного запроса.
func NewLoaders(store UserStore) *Loaders {
	// Создаем батч-функцию для лоадера
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		ids := make([]uint, len(keys))
		for i, k := range keys {
			id, err := strconv.ParseUint(k.String(), 10, 64)
			if err != nil {
				return failAll(len(keys), fmt.Errorf("bad user key %q: %w", k.String(), err))
			}
			ids[i] = uint(id)
		}

		usersMap, err := store.GetUsersByIDs(ctx, ids)
		if err != nil {
			// В случае ошибки, возвращаем ее для всех ключей
			return failAll(len(keys), err)
		}

		// Формируем результат в том же порядке, что и ключи
		results := make([]*dataloader.Result, len(keys))
		for i, id := range ids {
			if u, ok := usersMap[id]; ok {
				results[i] = &dataloader.Result{Data: u}
			} else {
				results[i] = &dataloader.Result{Error: fmt.Errorf("user with id %d: %w", id, domain.ErrNotFound)}
			}
		}
		return results
	}

	return &Loaders{
		UserByID: dataloader.NewBatchedLoader(batchFn, dataloader.WithWait(time.Millisecond*1)),
	}
}

// Middleware для внедрения лоадеров в контекст запроса.
func Middleware(store UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithLoaders(r.Context(), NewLoaders(store))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithLoaders помещает лоадеры в контекст.
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, key, loaders)
}

// For извлекает лоадеры из контекста; nil, если их нет.
func For(ctx context.Context) *Loaders {
	loaders, _ := ctx.Value(key).(*Loaders)
	return loaders
}

// LoadUsers загружает пользователей пачкой. Сначала ставим в очередь все
// ключи, потом ждем результаты: так они попадают в один батч.
func (l *Loaders) LoadUsers(ctx context.Context, ids []uint) (map[uint]*domain.User, error) {
	thunks := make(map[uint]dataloader.Thunk, len(ids))
	for _, id := range ids {
		if _, queued := thunks[id]; queued {
			continue
		}
		thunks[id] = l.UserByID.Load(ctx, dataloader.StringKey(strconv.FormatUint(uint64(id), 10)))
	}

	users := make(map[uint]*domain.User, len(thunks))
	for id, thunk := range thunks {
		data, err := thunk()
		if err != nil {
			return nil, err
		}
		users[id] = data.(*domain.User)
	}
	return users, nil
}

func failAll(n int, err error) []*dataloader.Result {
	results := make([]*dataloader.Result, n)
	for i := range results {
		results[i] = &dataloader.Result{Error: err}
	}
	return results
}
