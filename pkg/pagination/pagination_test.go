package pagination

import "testing"

func TestNormalizeDefaults(t *testing.T) {
	n := Params{}.Normalize()
	if n.Page != 1 {
		t.Fatalf("expected page 1, got %d", n.Page)
	}
	if n.PageSize != DefaultPageSize {
		t.Fatalf("expected default page size, got %d", n.PageSize)
	}
}

func TestNormalizeCapsPageSize(t *testing.T) {
	n := Params{Page: 3, PageSize: 5000}.Normalize()
	if n.PageSize != MaxPageSize {
		t.Fatalf("expected capped page size, got %d", n.PageSize)
	}
}

func TestOffset(t *testing.T) {
	p := Params{Page: 3, PageSize: 25}
	if got := p.Offset(); got != 50 {
		t.Fatalf("expected offset 50, got %d", got)
	}
	if got := (Params{}).Offset(); got != 0 {
		t.Fatalf("expected zero offset for defaults, got %d", got)
	}
}

func TestPageCount(t *testing.T) {
	p := Params{PageSize: 10}
	cases := map[int64]int{0: 0, 1: 1, 10: 1, 11: 2, 99: 10, 100: 10}
	for total, want := range cases {
		if got := p.PageCount(total); got != want {
			t.Fatalf("total %d: expected %d pages, got %d", total, want, got)
		}
	}
}

func TestNewPageNeverReturnsNilItems(t *testing.T) {
	page := NewPage[string](nil, 0, Params{})
	if page.Items == nil {
		t.Fatal("items should be an empty slice, not nil")
	}
	if page.PageCount != 0 {
		t.Fatalf("expected zero pages, got %d", page.PageCount)
	}
}
