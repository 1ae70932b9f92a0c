package bitbucket

import (
	"context"
	"iter"
)

// _pageSize is the number of items requested per page
// when iterating over all items of a collection.
// It's a variable so tests can override it.
var _pageSize = 100

// Page is one page of a paginated Bitbucket Server collection.
type Page[T any] struct {
	// Start is the index of the first item in this page.
	Start int `json:"start"`

	// Limit is the maximum number of items the server was asked for.
	Limit int `json:"limit"`

	// Size is the number of items in this page.
	Size int `json:"size"`

	// IsLastPage reports whether there are no more pages after this one.
	IsLastPage bool `json:"isLastPage"`

	// NextPageStart is the Start of the next page.
	// Meaningless if IsLastPage is set.
	NextPageStart int `json:"nextPageStart,omitempty"`

	Values []T `json:"values"`

	// Errors is non-empty if the page could not be retrieved.
	// Values is empty in that case.
	Errors ErrorList `json:"errors,omitempty"`
}

type (
	// ProjectPage is a page of projects.
	ProjectPage = Page[Project]

	// RepositoryPage is a page of repositories.
	RepositoryPage = Page[Repository]

	// PermissionsPage is a page of user or group permissions.
	PermissionsPage = Page[Permission]

	// HookPage is a page of repository hooks.
	HookPage = Page[Hook]
)

// pageParams are the query parameters shared by all paginated endpoints.
type pageParams struct {
	Start int `url:"start,omitempty"`
	Limit int `url:"limit,omitempty"`
}

// getPage fetches a single page into a new Page.
// Server errors are recorded on the page.
func getPage[T any](
	ctx context.Context,
	c *client,
	path string,
	params any,
) (*Page[T], error) {
	var page Page[T]
	errs, err := c.get(ctx, path, params, &page)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return &Page[T]{Errors: errs}, nil
	}
	return &page, nil
}

// allPages iterates over every item of a paginated collection.
// fetch is called with the start of each page and the desired page size.
//
// Iteration stops at the first failed page.
// A page that reports errors is yielded as an ErrorList error.
func allPages[T any](
	ctx context.Context,
	fetch func(ctx context.Context, start, limit int) (*Page[T], error),
) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		start := 0
		for {
			page, err := fetch(ctx, start, _pageSize)
			if err != nil {
				yield(nil, err)
				return
			}
			if err := page.Errors.Err(); err != nil {
				yield(nil, err)
				return
			}

			for i := range page.Values {
				if !yield(&page.Values[i], nil) {
					return
				}
			}

			// Guard against servers that claim more pages
			// without moving forward.
			if page.IsLastPage || len(page.Values) == 0 || page.NextPageStart <= start {
				return
			}
			start = page.NextPageStart
		}
	}
}
