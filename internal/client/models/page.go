package models

import (
	"net/url"
	"strconv"
)

const (
	DefaultPageSize = 10
	EventSort       = "eventDate,asc"
	BookingSort     = "bookingTime,desc"
)

// Page mirrors the backend's paginated listing.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
}

// PageQuery selects a page. Zero fields fall back to the defaults.
type PageQuery struct {
	Page int
	Size int
	Sort string
}

// Values renders q as page/size/sort query parameters, using defaultSort when
// q.Sort is empty. Negative pages are clamped to 0.
func (q PageQuery) Values(defaultSort string) url.Values {
	page := q.Page
	if page < 0 {
		page = 0
	}
	size := q.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	sort := q.Sort
	if sort == "" {
		sort = defaultSort
	}

	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	v.Set("size", strconv.Itoa(size))
	v.Set("sort", sort)
	return v
}
