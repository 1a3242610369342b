package analyzer

import (
	"encoding/json"
	"errors"
	"iter"
	"testing"
)

func TestCollectPreservesOrder(t *testing.T) {
	in := []Item{
		json.RawMessage(`{"expr":"x","result":3,"assign":true}`),
		json.RawMessage(`{"expr":"x+1","result":4}`),
		json.RawMessage(`"plain"`),
	}

	got, err := Collect(Slice(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(in) {
		t.Fatalf("expected %d items, got %d", len(in), len(got))
	}
	for i := range in {
		if string(got[i]) != string(in[i]) {
			t.Fatalf("item %d: got %s want %s", i, got[i], in[i])
		}
	}
}

func TestCollectEmptyIsNonNil(t *testing.T) {
	got, err := Collect(Slice(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestCollectDiscardsPartialResultsOnError(t *testing.T) {
	boom := errors.New("stream broke")
	var seq iter.Seq2[Item, error] = func(yield func(Item, error) bool) {
		if !yield(json.RawMessage(`1`), nil) {
			return
		}
		yield(nil, boom)
	}

	got, err := Collect(seq)
	if !errors.Is(err, boom) {
		t.Fatalf("expected stream error, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected no partial results, got %v", got)
	}
}
