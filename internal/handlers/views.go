package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/UkralStul/yatube-service/internal/dataloader"
	"github.com/UkralStul/yatube-service/internal/domain"
	"github.com/UkralStul/yatube-service/internal/paginator"
	"github.com/UkralStul/yatube-service/internal/storage"
)

// UserView - автор поста или комментария в ответе.
type UserView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// GroupView - краткие данные группы поста.
type GroupView struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// PostView - пост с подгруженными автором и группой.
type PostView struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Author    *UserView  `json:"author"`
	Group     *GroupView `json:"group"`
	Image     string     `json:"image,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// CommentView - комментарий с автором.
type CommentView struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	Text      string    `json:"text"`
	Author    *UserView `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// PageView - метаданные страницы; Next и Previous равны 0, если страницы нет.
type PageView struct {
	Number      int  `json:"number"`
	TotalPages  int  `json:"totalPages"`
	Count       int  `json:"count"`
	HasNext     bool `json:"hasNext"`
	HasPrevious bool `json:"hasPrevious"`
	Next        int  `json:"next,omitempty"`
	Previous    int  `json:"previous,omitempty"`
}

// PostPage - страница ленты.
type PostPage struct {
	Posts []*PostView `json:"posts"`
	Page  PageView    `json:"page"`
}

func userView(u *domain.User) *UserView {
	if u == nil {
		return nil
	}
	return &UserView{ID: u.ID, Username: u.Username}
}

func groupView(g *domain.Group) *GroupView {
	if g == nil {
		return nil
	}
	return &GroupView{ID: g.ID, Title: g.Title, Slug: g.Slug}
}

func pageView(p paginator.Page) PageView {
	return PageView{
		Number:      p.Number,
		TotalPages:  p.TotalPages,
		Count:       p.Count,
		HasNext:     p.HasNext(),
		HasPrevious: p.HasPrevious(),
		Next:        p.NextNumber(),
		Previous:    p.PreviousNumber(),
	}
}

// postViews подгружает авторов и группы постов одним запросом на каждую сущность.
func postViews(ctx context.Context, posts []*domain.Post) ([]*PostView, error) {
	loaders := dataloader.For(ctx)

	authorIDs := make([]string, 0, len(posts))
	groupIDs := make([]string, 0, len(posts))
	for _, p := range posts {
		authorIDs = append(authorIDs, p.AuthorID)
		if p.GroupID != nil {
			groupIDs = append(groupIDs, *p.GroupID)
		}
	}

	authors, err := loaders.Users(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	groups, err := loaders.Groups(ctx, groupIDs)
	if err != nil {
		return nil, err
	}

	views := make([]*PostView, len(posts))
	for i, p := range posts {
		v := &PostView{
			ID:        p.ID,
			Text:      p.Text,
			Author:    userView(authors[p.AuthorID]),
			Image:     p.Image,
			CreatedAt: p.CreatedAt,
		}
		if p.GroupID != nil {
			v.Group = groupView(groups[*p.GroupID])
		}
		views[i] = v
	}
	return views, nil
}

func postViewOf(ctx context.Context, p *domain.Post) (*PostView, error) {
	views, err := postViews(ctx, []*domain.Post{p})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func commentViews(ctx context.Context, comments []*domain.Comment) ([]*CommentView, error) {
	ids := make([]string, len(comments))
	for i, c := range comments {
		ids[i] = c.AuthorID
	}
	authors, err := dataloader.For(ctx).Users(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]*CommentView, len(comments))
	for i, c := range comments {
		views[i] = &CommentView{
			ID:        c.ID,
			PostID:    c.PostID,
			Text:      c.Text,
			Author:    userView(authors[c.AuthorID]),
			CreatedAt: c.CreatedAt,
		}
	}
	return views, nil
}

// postPage выбирает страницу постов по фильтру; номер берётся из ?page=.
func (h *Handler) postPage(r *http.Request, filter storage.PostFilter) (*PostPage, error) {
	ctx := r.Context()

	count, err := h.Storage.CountPosts(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := paginator.New(count, paginator.PostsPerPage, r.URL.Query().Get("page"))

	posts, err := h.Storage.GetPosts(ctx, filter, page.Limit(), page.Offset())
	if err != nil {
		return nil, err
	}
	views, err := postViews(ctx, posts)
	if err != nil {
		return nil, err
	}
	return &PostPage{Posts: views, Page: pageView(page)}, nil
}
