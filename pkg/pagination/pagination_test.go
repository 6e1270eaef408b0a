package pagination

import "testing"

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		in          Params
		wantPage    int
		wantPerPage int
	}{
		{"zero values", Params{}, 1, DefaultPerPage},
		{"negative page", Params{Page: -3, PerPage: 10}, 1, 10},
		{"per page over max", Params{Page: 2, PerPage: 5000}, 2, MaxPerPage},
		{"in range", Params{Page: 4, PerPage: 50}, 4, 50},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := tc.in.Normalize()
			if got.Page != tc.wantPage || got.PerPage != tc.wantPerPage {
				t.Fatalf("Normalize() = %+v, want page=%d per_page=%d", got, tc.wantPage, tc.wantPerPage)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	t.Parallel()

	if got := (Params{Page: 3, PerPage: 20}).Offset(); got != 40 {
		t.Fatalf("Offset() = %d, want 40", got)
	}
	if got := (Params{}).Offset(); got != 0 {
		t.Fatalf("Offset() for zero params = %d, want 0", got)
	}
}

func TestNewPage(t *testing.T) {
	t.Parallel()

	page := NewPage([]int{1, 2, 3}, 7, Params{Page: 2, PerPage: 3})
	if page.TotalPages != 3 {
		t.Fatalf("TotalPages = %d, want 3", page.TotalPages)
	}
	if !page.HasNext || !page.HasPrev {
		t.Fatalf("expected has_next and has_prev on middle page: %+v", page)
	}

	empty := NewPage[int](nil, 0, Params{})
	if empty.Items == nil {
		t.Fatal("empty page should serialize items as [] not null")
	}
	if empty.HasNext || empty.HasPrev {
		t.Fatalf("empty page should have no neighbors: %+v", empty)
	}
}
