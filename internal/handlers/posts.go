package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/UkralStul/yatube-service/internal/domain"
	"github.com/UkralStul/yatube-service/internal/forms"
	"github.com/UkralStul/yatube-service/internal/storage"
)

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	page, err := h.postPage(r, storage.PostFilter{})
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) groups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Storage.GetGroups(r.Context())
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	if groups == nil {
		groups = []*domain.Group{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": groups})
}

func (h *Handler) groupPosts(w http.ResponseWriter, r *http.Request) {
	group, err := h.Storage.GetGroupBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	page, err := h.postPage(r, storage.PostFilter{GroupID: group.ID})
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"group": group,
		"posts": page.Posts,
		"page":  page.Page,
	})
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	author, err := h.Storage.GetUserByUsername(ctx, chi.URLParam(r, "username"))
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	page, err := h.postPage(r, storage.PostFilter{AuthorID: author.ID})
	if err != nil {
		writeStorageError(w, r, err)
		return
	}

	following := false
	me, err := h.optionalViewer(ctx)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	if me != nil && me.ID != author.ID {
		following, err = h.Storage.IsFollowing(ctx, me.ID, author.ID)
		if err != nil {
			writeStorageError(w, r, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"author":     userView(author),
		"postsCount": page.Page.Count,
		"following":  following,
		"posts":      page.Posts,
		"page":       page.Page,
	})
}

// loadPost находит пост из пути. Некорректный ID отвечает 404, как и отсутствующий.
func (h *Handler) loadPost(w http.ResponseWriter, r *http.Request) (*domain.Post, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return nil, false
	}
	post, err := h.Storage.GetPostByID(r.Context(), id)
	if err != nil {
		writeStorageError(w, r, err)
		return nil, false
	}
	return post, true
}

func (h *Handler) postDetail(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadPost(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	view, err := postViewOf(ctx, post)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	comments, err := h.Storage.GetCommentsByPostID(ctx, post.ID)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	commentList, err := commentViews(ctx, comments)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"post":     view,
		"comments": commentList,
	})
}

// checkGroup проверяет, что выбранная группа существует.
func (h *Handler) checkGroup(ctx context.Context, groupID *string) error {
	if groupID == nil {
		return nil
	}
	_, err := h.Storage.GetGroupByID(ctx, *groupID)
	if errors.Is(err, storage.ErrNotFound) {
		return forms.FieldErrors{"group": "select a valid choice"}
	}
	return err
}

func (h *Handler) readPostForm(w http.ResponseWriter, r *http.Request) (*forms.PostForm, error) {
	form := &forms.PostForm{}
	if err := decode(w, r, form); err != nil {
		return nil, err
	}
	if err := form.Clean(); err != nil {
		return nil, err
	}
	if err := h.checkGroup(r.Context(), form.Group); err != nil {
		return nil, err
	}
	return form, nil
}

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	form, err := h.readPostForm(w, r)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}

	post, err := h.Storage.CreatePost(r.Context(), &domain.Post{
		Text:     form.Text,
		AuthorID: viewer(r.Context()).ID,
		GroupID:  form.Group,
		Image:    form.Image,
	})
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	view, err := postViewOf(r.Context(), post)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// loadOwnPost находит пост и проверяет, что его автор - текущий пользователь.
func (h *Handler) loadOwnPost(w http.ResponseWriter, r *http.Request) (*domain.Post, bool) {
	post, ok := h.loadPost(w, r)
	if !ok {
		return nil, false
	}
	if post.AuthorID != viewer(r.Context()).ID {
		writeError(w, http.StatusForbidden, "only the author can change this post")
		return nil, false
	}
	return post, true
}

func (h *Handler) editPost(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadOwnPost(w, r)
	if !ok {
		return
	}
	form, err := h.readPostForm(w, r)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}

	post.Text = form.Text
	post.GroupID = form.Group
	post.Image = form.Image
	updated, err := h.Storage.UpdatePost(r.Context(), post)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	view, err := postViewOf(r.Context(), updated)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) deletePost(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadOwnPost(w, r)
	if !ok {
		return
	}
	if err := h.Storage.DeletePost(r.Context(), post.ID); err != nil {
		writeStorageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addComment(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadPost(w, r)
	if !ok {
		return
	}
	form := &forms.CommentForm{}
	if err := decode(w, r, form); err != nil {
		writeStorageError(w, r, err)
		return
	}
	if err := form.Clean(); err != nil {
		writeStorageError(w, r, err)
		return
	}

	comment, err := h.Storage.CreateComment(r.Context(), &domain.Comment{
		PostID:   post.ID,
		AuthorID: viewer(r.Context()).ID,
		Text:     form.Text,
	})
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	// Уведомляем подписчиков только после успешной записи
	h.Observer.Publish(comment)

	views, err := commentViews(r.Context(), []*domain.Comment{comment})
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, views[0])
}
