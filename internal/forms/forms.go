// Package forms описывает входные данные запросов и их валидацию.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	slugRe     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)
	slugifyRe  = regexp.MustCompile(`[^a-z0-9_-]+`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Ошибки отдаём по именам полей из JSON
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
	return v
}

// FieldErrors - ошибки валидации по полям формы.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + e[f]
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// PostForm - создание и редактирование поста.
type PostForm struct {
	Text  string  `json:"text" validate:"required,max=700"`
	Group *string `json:"group" validate:"omitempty,uuid"`
	Image string  `json:"image" validate:"omitempty,max=255"`
}

// Clean нормализует и проверяет форму.
func (f *PostForm) Clean() error {
	f.Text = strings.TrimSpace(f.Text)
	f.Image = strings.TrimSpace(f.Image)
	if f.Group != nil {
		g := strings.TrimSpace(*f.Group)
		if g == "" {
			f.Group = nil
		} else {
			f.Group = &g
		}
	}
	return check(f)
}

// CommentForm - добавление комментария.
type CommentForm struct {
	Text string `json:"text" validate:"required,max=300"`
}

func (f *CommentForm) Clean() error {
	f.Text = strings.TrimSpace(f.Text)
	return check(f)
}

// GroupForm - создание и редактирование группы администратором.
type GroupForm struct {
	Title       string `json:"title" validate:"required,max=200"`
	Slug        string `json:"slug" validate:"required,max=50,slug"`
	Description string `json:"description"`
}

// Clean нормализует форму; пустой slug выводится из названия.
func (f *GroupForm) Clean() error {
	f.Title = strings.TrimSpace(f.Title)
	f.Slug = strings.TrimSpace(f.Slug)
	f.Description = strings.TrimSpace(f.Description)
	if f.Slug == "" {
		f.Slug = Slugify(f.Title)
	}
	return check(f)
}

// UserForm - регистрация пользователя администратором.
type UserForm struct {
	Username string `json:"username" validate:"required,max=150,username"`
}

func (f *UserForm) Clean() error {
	f.Username = strings.TrimSpace(f.Username)
	return check(f)
}

// Slugify строит slug из ASCII-части строки. Для строки без латиницы и цифр вернёт "".
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), "-")
	s = slugifyRe.ReplaceAllString(s, "")
	s = strings.Trim(s, "-_")
	if len(s) > 50 {
		s = strings.TrimRight(s[:50], "-_")
	}
	return s
}

func check(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "max":
		return fmt.Sprintf("ensure this value has at most %s characters", fe.Param())
	case "uuid":
		return "select a valid choice"
	case "slug":
		return "enter a valid slug consisting of letters, numbers, underscores or hyphens"
	case "username":
		return "enter a valid username: letters, digits and @/./+/-/_ only"
	default:
		return "invalid value"
	}
}
