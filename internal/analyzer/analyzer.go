package analyzer

import (
	"context"
	"encoding/json"
	"iter"

	"github.com/example/calc-vision/internal/imagedata"
)

// Item is one analysis result. Its shape belongs to the analysis service.
type Item = json.RawMessage

// Vars maps variable names to the values the client has already assigned.
type Vars = map[string]json.RawMessage

// Client is the external image analysis capability. The returned sequence
// may be lazy; an error yielded mid-sequence fails the whole call.
type Client interface {
	Analyze(ctx context.Context, img *imagedata.Image, vars Vars) (iter.Seq2[Item, error], error)
}

// Collect drains seq in order. On the first error the items gathered so far
// are discarded.
func Collect(seq iter.Seq2[Item, error]) ([]Item, error) {
	items := make([]Item, 0)
	for item, err := range seq {
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Slice adapts an already materialized result to a sequence.
func Slice(items []Item) iter.Seq2[Item, error] {
	return func(yield func(Item, error) bool) {
		for _, item := range items {
			if !yield(item, nil) {
				return
			}
		}
	}
}
