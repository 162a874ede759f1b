// Package paginator разбивает упорядоченную выборку на страницы фиксированного размера.
package paginator

import (
	"strconv"
	"strings"
)

// PostsPerPage - количество постов на странице лент.
const PostsPerPage = 10

// Page описывает одну страницу выборки. Номера страниц начинаются с 1.
type Page struct {
	Number     int
	PerPage    int
	Count      int
	TotalPages int
}

// New вычисляет страницу для выборки из count элементов.
// Пустой или нечисловой номер даёт первую страницу, любой номер вне
// диапазона (в том числе 0 и отрицательный) - последнюю. Пустая выборка
// состоит из одной пустой страницы.
func New(count, perPage int, requested string) Page {
	if perPage < 1 {
		perPage = PostsPerPage
	}
	if count < 0 {
		count = 0
	}

	total := (count + perPage - 1) / perPage
	if total < 1 {
		total = 1
	}

	number, err := strconv.Atoi(strings.TrimSpace(requested))
	if err != nil {
		number = 1
	} else if number < 1 || number > total {
		number = total
	}

	return Page{
		Number:     number,
		PerPage:    perPage,
		Count:      count,
		TotalPages: total,
	}
}

func (p Page) Offset() int { return (p.Number - 1) * p.PerPage }

func (p Page) Limit() int { return p.PerPage }

func (p Page) HasNext() bool { return p.Number < p.TotalPages }

func (p Page) HasPrevious() bool { return p.Number > 1 }

// NextNumber возвращает номер следующей страницы или 0, если её нет.
func (p Page) NextNumber() int {
	if !p.HasNext() {
		return 0
	}
	return p.Number + 1
}

// PreviousNumber возвращает номер предыдущей страницы или 0, если её нет.
func (p Page) PreviousNumber() int {
	if !p.HasPrevious() {
		return 0
	}
	return p.Number - 1
}

// Slice возвращает элементы items, попадающие на указанную страницу.
func Slice[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) || limit <= 0 {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
