package http

import (
	"net/http"
	"net/url"
	"strconv"

	apperrors "hoteldesk/pkg/errors"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page describes one slice of a paginated listing.
type Page struct {
	Number   int
	Size     int
	Count    int
	Next     *string
	Previous *string
}

// ExtractPage reads the page and page_size query parameters.
func ExtractPage(r *http.Request) (int, int, error) {
	query := r.URL.Query()

	page := 1
	if s := query.Get("page"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return 0, 0, apperrors.NotFound("Invalid page")
		}
		page = v
	}

	size := DefaultPageSize
	if s := query.Get("page_size"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid page_size parameter: " + s)
		}
		size = v
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size, nil
}

// Paginate cuts items down to the requested page and builds the absolute
// next/previous links for it.
func Paginate[T any](r *http.Request, items []T, number, size int) ([]T, Page, error) {
	count := len(items)
	start := (number - 1) * size
	if start > 0 && start >= count {
		return nil, Page{}, apperrors.NotFound("Invalid page")
	}
	end := min(start+size, count)

	page := Page{Number: number, Size: size, Count: count}
	if end < count {
		page.Next = pageLink(r, number+1)
	}
	if number > 1 {
		page.Previous = pageLink(r, number-1)
	}
	return items[start:end], page, nil
}

func pageLink(r *http.Request, number int) *string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	u := url.URL{Scheme: scheme, Host: r.Host, Path: r.URL.Path}
	query := r.URL.Query()
	if number == 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(number))
	}
	u.RawQuery = query.Encode()
	link := u.String()
	return &link
}
