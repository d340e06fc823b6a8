package gapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Query parameter names used for paging. Pub/Sub caps pages with pageSize,
// Logging list calls with maxResults.
const (
	ParamPageToken  = "pageToken"
	ParamPageSize   = "pageSize"
	ParamMaxResults = "maxResults"

	fieldNextPageToken = "nextPageToken"
)

// ListOptions selects a page of a list call. Max caps the page size and is
// omitted when zero.
type ListOptions struct {
	Token string
	Max   int
}

// PageFunc issues the list request for one page. The token is empty for the first page.
type PageFunc func(ctx context.Context, token string) (*Response, error)

// List is one page of a list call plus the continuation token.
// An empty token is the only termination signal; a page can hold items and no token.
type List[T any] struct {
	Items []T
	Token string

	next func(ctx context.Context, token string) (*List[T], error)
}

// NewList returns a List that is not backed by a query. Next fails with ErrNotConnected.
func NewList[T any](items []T, token string) *List[T] {
	return &List[T]{Items: items, Token: token}
}

// Len returns the number of items on this page.
func (l *List[T]) Len() int {
	return len(l.Items)
}

// HasNext reports whether the service may hold more results.
func (l *List[T]) HasNext() bool {
	return l.Token != ""
}

// Next fetches the following page with the same query and the current token.
func (l *List[T]) Next(ctx context.Context) (*List[T], error) {
	if l.next == nil {
		return nil, ErrNotConnected
	}
	if !l.HasNext() {
		return nil, ErrNoMorePages
	}
	return l.next(ctx, l.Token)
}

// All returns the items of this page followed by every remaining page, fetched one by one.
func (l *List[T]) All(ctx context.Context) ([]T, error) {
	items := append([]T(nil), l.Items...)
	page := l
	for page.HasNext() {
		next, err := page.Next(ctx)
		if err != nil {
			return items, err
		}
		items = append(items, next.Items...)
		page = next
	}
	return items, nil
}

// FromResponse decodes a list reply of the shape {"<field>": [...], "nextPageToken": "..."}.
// Every element is passed through decode. When page is non-nil the returned list can
// fetch its successor through it.
func FromResponse[W any, T any](resp *Response, field string, decode func(W) T, page PageFunc) (*List[T], error) {
	raw := map[string]json.RawMessage{}
	if err := resp.Decode(&raw); err != nil {
		return nil, err
	}

	var wire []W
	if data, ok := raw[field]; ok {
		if err := json.Unmarshal(data, &wire); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", field, err)
		}
	}

	var token *string
	if data, ok := raw[fieldNextPageToken]; ok {
		if err := json.Unmarshal(data, &token); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", fieldNextPageToken, err)
		}
	}

	items := make([]T, 0, len(wire))
	for _, w := range wire {
		items = append(items, decode(w))
	}

	list := &List[T]{Items: items}
	if token != nil {
		list.Token = *token
	}

	if page != nil {
		list.next = func(ctx context.Context, token string) (*List[T], error) {
			resp, err := page(ctx, token)
			if err != nil {
				return nil, err
			}
			return FromResponse(resp, field, decode, page)
		}
	}

	return list, nil
}

// PageQuery builds the paging query parameters. The size cap is omitted when size <= 0.
func PageQuery(token string, size int, sizeParam string) url.Values {
	query := url.Values{}
	if token != "" {
		query.Set(ParamPageToken, token)
	}
	if size > 0 {
		query.Set(sizeParam, strconv.Itoa(size))
	}
	return query
}
