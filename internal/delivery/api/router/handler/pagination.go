package handler

import (
	"net/url"
	"strconv"

	"coderr/config"
	"coderr/internal/delivery/api/response"
	domainerrors "coderr/internal/domain/errors"
	"coderr/internal/domain/repository"

	"github.com/labstack/echo/v4"
)

const (
	pageParam     = "page"
	pageSizeParam = "page_size"
)

// paginator turns page/page_size query parameters into repository windows and list envelopes.
type paginator struct {
	defaultSize int
	maxSize     int
}

func newPaginator(cfg *config.Config) paginator {
	return paginator{
		defaultSize: cfg.Pagination.DefaultPageSize,
		maxSize:     cfg.Pagination.MaxPageSize,
	}
}

type pageQuery struct {
	number int
	size   int
}

func (q pageQuery) request() repository.PageRequest {
	return repository.PageRequest{Limit: q.size, Offset: (q.number - 1) * q.size}
}

// parse reads the page number and size. A page that is not a positive number is not found;
// an unusable page_size falls back to the default and is capped at the maximum.
func (p paginator) parse(c echo.Context) (pageQuery, error) {
	q := pageQuery{number: 1, size: p.defaultSize}

	if raw := c.QueryParam(pageParam); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return q, domainerrors.ErrInvalidPage
		}
		q.number = n
	}

	if raw := c.QueryParam(pageSizeParam); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			q.size = min(n, p.maxSize)
		}
	}

	return q, nil
}

// buildPage wraps one page of results. Page 1 always exists, later pages only when they hold results.
func buildPage[T any](c echo.Context, q pageQuery, total int64, results []T) (*response.Page[T], error) {
	lastPage := 1
	if total > 0 {
		lastPage = int((total + int64(q.size) - 1) / int64(q.size))
	}
	if q.number > lastPage {
		return nil, domainerrors.ErrInvalidPage
	}

	if results == nil {
		results = []T{}
	}

	page := &response.Page[T]{Count: total, Results: results}
	if q.number < lastPage {
		next := pageURL(c, q.number+1)
		page.Next = &next
	}
	if q.number > 1 {
		previous := pageURL(c, q.number-1)
		page.Previous = &previous
	}

	return page, nil
}

// pageURL is the absolute URL of the current request pointing at another page.
// Links to the first page drop the page parameter.
func pageURL(c echo.Context, number int) string {
	query := c.Request().URL.Query()
	if number == 1 {
		query.Del(pageParam)
	} else {
		query.Set(pageParam, strconv.Itoa(number))
	}

	u := url.URL{
		Scheme:   c.Scheme(),
		Host:     c.Request().Host,
		Path:     c.Request().URL.Path,
		RawQuery: query.Encode(),
	}

	return u.String()
}

// absoluteURL resolves a server path against the request host.
func absoluteURL(c echo.Context, path string) string {
	u := url.URL{Scheme: c.Scheme(), Host: c.Request().Host, Path: path}

	return u.String()
}
