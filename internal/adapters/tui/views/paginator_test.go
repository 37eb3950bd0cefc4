package views

import "testing"

func TestPaginator(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		pageSize  int
		moves     func(p *Paginator)
		cursor    int
		page      int
		wantStart int
		wantEnd   int
	}{
		{
			name:     "empty",
			total:    0,
			pageSize: 5,
			moves:    func(p *Paginator) { p.CursorDown() },
			cursor:   0, page: 1, wantStart: 0, wantEnd: 0,
		},
		{
			name:     "down across a page",
			total:    12,
			pageSize: 5,
			moves: func(p *Paginator) {
				for i := 0; i < 6; i++ {
					p.CursorDown()
				}
			},
			cursor: 6, page: 2, wantStart: 5, wantEnd: 10,
		},
		{
			name:     "last page is short",
			total:    12,
			pageSize: 5,
			moves:    func(p *Paginator) { p.NextPage(); p.NextPage(); p.NextPage() },
			cursor:   10, page: 3, wantStart: 10, wantEnd: 12,
		},
		{
			name:     "cursor clamped",
			total:    4,
			pageSize: 5,
			moves:    func(p *Paginator) { p.SetCursor(10) },
			cursor:   3, page: 1, wantStart: 0, wantEnd: 4,
		},
		{
			name:     "resize keeps cursor visible",
			total:    30,
			pageSize: 10,
			moves:    func(p *Paginator) { p.SetCursor(17); p.SetPageSize(4) },
			cursor:   17, page: 5, wantStart: 16, wantEnd: 20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPaginator(tt.pageSize)
			p.SetTotal(tt.total)
			tt.moves(p)

			if p.Cursor() != tt.cursor {
				t.Errorf("cursor = %d, want %d", p.Cursor(), tt.cursor)
			}
			if p.CurrentPage() != tt.page {
				t.Errorf("page = %d, want %d", p.CurrentPage(), tt.page)
			}
			start, end := p.VisibleRange()
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("range = [%d, %d), want [%d, %d)", start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}
