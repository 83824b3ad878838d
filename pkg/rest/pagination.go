package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/url"
)

type page struct {
	Next    *string           `json:"next"`
	Results []json.RawMessage `json:"results"`
}

// Pager walks a list endpoint by following the "next" cursor of each page.
// Every call to Next performs exactly one GET; nothing is prefetched.
type Pager struct {
	ctx    context.Context
	client *Client
	url    string
	params url.Values
	done   bool
	err    error
}

// Paginate prepares a Pager for endpoint. Query parameters embedded in endpoint
// take precedence over params.
func (c *Client) Paginate(ctx context.Context, endpoint string, params url.Values) *Pager {
	p := &Pager{ctx: ctx, client: c, params: url.Values{}}
	for key, values := range params {
		p.params[key] = append([]string(nil), values...)
	}
	p.err = p.moveTo(endpoint)
	return p
}

// moveTo strips the query from target and merges it into the pager parameters
func (p *Pager) moveTo(target string) error {
	base, query, err := splitURL(target)
	if err != nil {
		return err
	}
	for key, values := range query {
		p.params[key] = values
	}
	p.url = base
	return nil
}

// Next fetches the next page of raw records. It returns io.EOF once the cursor is exhausted.
func (p *Pager) Next() ([]json.RawMessage, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.done {
		return nil, io.EOF
	}

	body, err := p.client.Get(p.ctx, p.url, p.params)
	if err != nil {
		p.err = err
		return nil, err
	}
	if body == nil {
		p.done = true
		return nil, nil
	}

	var current page
	if err := json.Unmarshal(body, &current); err != nil {
		p.err = fmt.Errorf("failed to decode page from %s: %w", p.url, err)
		return nil, p.err
	}

	if current.Next == nil || *current.Next == "" {
		p.done = true
	} else if err := p.moveTo(*current.Next); err != nil {
		p.err = err
		return nil, err
	}
	return current.Results, nil
}

// Iterator lazily decodes the records of a Pager into T
type Iterator[T any] struct {
	pager  *Pager
	decode func(json.RawMessage) (T, error)
	buf    []json.RawMessage
	item   T
	err    error
	done   bool
}

// NewIterator wraps pager so that each raw record is decoded with decode
func NewIterator[T any](pager *Pager, decode func(json.RawMessage) (T, error)) *Iterator[T] {
	return &Iterator[T]{pager: pager, decode: decode}
}

// Next advances to the next item, fetching a new page only when the current one is consumed
func (it *Iterator[T]) Next() bool {
	for len(it.buf) == 0 {
		if it.done || it.err != nil {
			return false
		}
		records, err := it.pager.Next()
		if errors.Is(err, io.EOF) {
			it.done = true
			return false
		}
		if err != nil {
			it.err = err
			return false
		}
		it.buf = records
	}

	raw := it.buf[0]
	it.buf = it.buf[1:]
	item, err := it.decode(raw)
	if err != nil {
		it.err = err
		return false
	}
	it.item = item
	return true
}

// Item returns the current item
func (it *Iterator[T]) Item() T {
	return it.item
}

// Err returns the error that stopped the iteration, if any
func (it *Iterator[T]) Err() error {
	return it.err
}

// Seq exposes the iterator as a range-over-func sequence. A terminal error is yielded
// once with the zero value of T.
func (it *Iterator[T]) Seq() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for it.Next() {
			if !yield(it.item, nil) {
				return
			}
		}
		if it.err != nil {
			var zero T
			yield(zero, it.err)
		}
	}
}

// Collect drains it into a slice
func Collect[T any](it *Iterator[T]) ([]T, error) {
	var items []T
	for it.Next() {
		items = append(items, it.Item())
	}
	return items, it.Err()
}

// Raw is the identity decoder
func Raw(raw json.RawMessage) (json.RawMessage, error) {
	return raw, nil
}

// Map returns an iterator over the same pages whose items are passed through fn.
// it must not have been advanced yet.
func Map[T, U any](it *Iterator[T], fn func(T) (U, error)) *Iterator[U] {
	decode := it.decode
	return &Iterator[U]{pager: it.pager, decode: func(raw json.RawMessage) (U, error) {
		item, err := decode(raw)
		if err != nil {
			var zero U
			return zero, err
		}
		return fn(item)
	}}
}
