package worker

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestPool_PreservesOrder(t *testing.T) {
	items := make([]int, 50)
	for i := range items {
		items[i] = i
	}

	pool := NewPool[int, string](4)
	results := pool.Process(items, func(n int) (string, error) {
		return fmt.Sprintf("item-%d", n), nil
	})

	if len(results) != len(items) {
		t.Fatalf("got %d results, want %d", len(results), len(items))
	}
	for i, r := range results {
		want := fmt.Sprintf("item-%d", i)
		if r.Value != want {
			t.Errorf("result %d = %q, want %q", i, r.Value, want)
		}
		if r.Index != i {
			t.Errorf("result %d has index %d", i, r.Index)
		}
	}
}

func TestPool_CapturesPerItemErrors(t *testing.T) {
	errBoom := errors.New("boom")
	pool := NewPool[string, string](2)

	results := pool.Process([]string{"good", "bad", "good"}, func(s string) (string, error) {
		if s == "bad" {
			return "", errBoom
		}
		return strings.ToUpper(s), nil
	})

	if results[0].Err != nil || results[2].Err != nil {
		t.Error("good items should not carry errors")
	}
	if !errors.Is(results[1].Err, errBoom) {
		t.Errorf("bad item error = %v, want boom", results[1].Err)
	}
	if results[0].Value != "GOOD" {
		t.Errorf("value = %q", results[0].Value)
	}
}

func TestPool_EmptyInput(t *testing.T) {
	pool := NewPool[string, int](0) // 0 concurrency defaults to NumCPU
	if results := pool.Process(nil, func(string) (int, error) { return 0, nil }); results != nil {
		t.Errorf("expected nil results for empty input, got %v", results)
	}
}
