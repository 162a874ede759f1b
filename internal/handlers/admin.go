package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/UkralStul/yatube-service/internal/domain"
	"github.com/UkralStul/yatube-service/internal/forms"
)

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	form := &forms.UserForm{}
	if err := decode(w, r, form); err != nil {
		writeStorageError(w, r, err)
		return
	}
	if err := form.Clean(); err != nil {
		writeStorageError(w, r, err)
		return
	}

	user, err := h.Storage.CreateUser(r.Context(), &domain.User{Username: form.Username})
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// deleteUser удаляет пользователя вместе с его постами, комментариями и подписками.
func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.Storage.GetUserByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	if err := h.Storage.DeleteUser(r.Context(), user.ID); err != nil {
		writeStorageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) readGroupForm(w http.ResponseWriter, r *http.Request) (*forms.GroupForm, error) {
	form := &forms.GroupForm{}
	if err := decode(w, r, form); err != nil {
		return nil, err
	}
	if err := form.Clean(); err != nil {
		return nil, err
	}
	return form, nil
}

func (h *Handler) createGroup(w http.ResponseWriter, r *http.Request) {
	form, err := h.readGroupForm(w, r)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	group, err := h.Storage.CreateGroup(r.Context(), &domain.Group{
		Title:       form.Title,
		Slug:        form.Slug,
		Description: form.Description,
	})
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

func (h *Handler) updateGroup(w http.ResponseWriter, r *http.Request) {
	group, err := h.Storage.GetGroupBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	form, err := h.readGroupForm(w, r)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}

	group.Title = form.Title
	group.Slug = form.Slug
	group.Description = form.Description
	updated, err := h.Storage.UpdateGroup(r.Context(), group)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// deleteGroup удаляет группу; её посты остаются без группы.
func (h *Handler) deleteGroup(w http.ResponseWriter, r *http.Request) {
	group, err := h.Storage.GetGroupBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	if err := h.Storage.DeleteGroup(r.Context(), group.ID); err != nil {
		writeStorageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
