package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/UkralStul/yatube-service/internal/dataloader"
	"github.com/UkralStul/yatube-service/internal/storage"
)

func (h *Handler) followIndex(w http.ResponseWriter, r *http.Request) {
	page, err := h.postPage(r, storage.PostFilter{FollowerID: viewer(r.Context()).ID})
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// followAuthors - авторы, на которых подписан пользователь, в порядке подписки.
func (h *Handler) followAuthors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	follows, err := h.Storage.GetFollows(ctx, viewer(ctx).ID)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}

	ids := make([]string, len(follows))
	for i, f := range follows {
		ids[i] = f.AuthorID
	}
	users, err := dataloader.For(ctx).Users(ctx, ids)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}

	authors := make([]*UserView, 0, len(follows))
	for _, id := range ids {
		if u, ok := users[id]; ok {
			authors = append(authors, userView(u))
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"authors": authors})
}

// profileFollow подписывает на автора. Подписка на себя, повторная подписка
// и подписка на несуществующего пользователя ничего не меняют.
func (h *Handler) profileFollow(w http.ResponseWriter, r *http.Request) {
	h.changeFollow(w, r, true)
}

func (h *Handler) profileUnfollow(w http.ResponseWriter, r *http.Request) {
	h.changeFollow(w, r, false)
}

func (h *Handler) changeFollow(w http.ResponseWriter, r *http.Request, follow bool) {
	ctx := r.Context()
	me := viewer(ctx)

	author, err := h.Storage.GetUserByUsername(ctx, chi.URLParam(r, "username"))
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusOK, map[string]bool{"following": false})
		return
	}
	if err != nil {
		writeStorageError(w, r, err)
		return
	}

	if follow {
		err = h.Storage.Follow(ctx, me.ID, author.ID)
	} else {
		err = h.Storage.Unfollow(ctx, me.ID, author.ID)
	}
	if err != nil {
		writeStorageError(w, r, err)
		return
	}

	following, err := h.Storage.IsFollowing(ctx, me.ID, author.ID)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"following": following})
}
