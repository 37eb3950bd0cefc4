package schematic

import (
	"math"
	"strings"

	"github.com/paulmach/orb"

	"railio/internal/domain"
)

const maxRows = 40

var nodeGlyphs = map[domain.NodeKind]rune{
	domain.NodeBufferStop:   '#',
	domain.NodeOpenEnd:      'o',
	domain.NodeMacroscopic:  '@',
	domain.NodeSwitch:       'Y',
	domain.NodeCrossing:     'X',
	domain.NodeContinuation: '+',
}

var objectGlyphs = map[domain.ObjectKind]rune{
	domain.KindSignal:        '!',
	domain.KindBalise:        'b',
	domain.KindTrainDetector: 'd',
	domain.KindPlatformEdge:  '=',
	domain.KindSpeedChange:   'v',
	domain.KindLevelCrossing: 'L',
	domain.KindDerailer:      'r',
}

// Render draws the layout on a character grid width columns wide, highest y on top
func Render(l *domain.Layout, width int) string {
	if l.Empty() {
		return ""
	}
	if width < 10 {
		width = 10
	}

	lo, hi := l.Bounds.Min, l.Bounds.Max
	spanX := hi[0] - lo[0]
	spanY := hi[1] - lo[1]
	rows := int(math.Round(spanY)) + 1
	if rows > maxRows {
		rows = maxRows
	}
	if rows < 1 {
		rows = 1
	}

	grid := make([][]rune, rows)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", width))
	}
	cell := func(p orb.Point) (int, int) {
		c, r := 0, 0
		if spanX > 0 {
			c = int(math.Round((p[0] - lo[0]) / spanX * float64(width-1)))
		}
		if spanY > 0 {
			r = int(math.Round((hi[1] - p[1]) / spanY * float64(rows-1)))
		}
		return c, r
	}

	for _, e := range l.Edges {
		for i := 0; i+1 < len(e.Line); i++ {
			c0, r0 := cell(e.Line[i])
			c1, r1 := cell(e.Line[i+1])
			drawSegment(grid, c0, r0, c1, r1)
		}
	}
	for _, o := range l.Objects {
		g, ok := objectGlyphs[o.Kind]
		if !ok {
			g = '*'
		}
		c, r := cell(o.Point)
		grid[r][c] = g
	}
	for _, n := range l.Nodes {
		c, r := cell(n.Point)
		grid[r][c] = nodeGlyphs[n.Kind]
	}

	var b strings.Builder
	for _, row := range grid {
		b.WriteString(strings.TrimRight(string(row), " "))
		b.WriteByte('\n')
	}
	return b.String()
}

func drawSegment(grid [][]rune, c0, r0, c1, r1 int) {
	switch {
	case r0 == r1:
		if c0 > c1 {
			c0, c1 = c1, c0
		}
		for c := c0; c <= c1; c++ {
			if grid[r0][c] == ' ' {
				grid[r0][c] = '-'
			}
		}
	case c0 == c1:
		if r0 > r1 {
			r0, r1 = r1, r0
		}
		for r := r0; r <= r1; r++ {
			if grid[r][c0] == ' ' || grid[r][c0] == '-' {
				grid[r][c0] = '|'
			}
		}
	default:
		steps := int(math.Max(math.Abs(float64(c1-c0)), math.Abs(float64(r1-r0))))
		for i := 0; i <= steps; i++ {
			c := c0 + (c1-c0)*i/steps
			r := r0 + (r1-r0)*i/steps
			if grid[r][c] == ' ' {
				grid[r][c] = '/'
			}
		}
	}
}
