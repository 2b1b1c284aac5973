package game

// Board is the grid of locked cells. Row 0 is the top.
type Board struct {
	width  int
	height int
	cells  [][]Cell
}

// NewBoard returns an empty board of the given size.
func NewBoard(width, height int) *Board {
	cells := make([][]Cell, height)
	for y := range cells {
		cells[y] = make([]Cell, width)
	}
	return &Board{
		width:  width,
		height: height,
		cells:  cells,
	}
}

// BoardFromRows builds a board holding a copy of rows.
func BoardFromRows(rows [][]Cell) *Board {
	width := 0
	if len(rows) > 0 {
		width = len(rows[0])
	}
	b := NewBoard(width, len(rows))
	for y, row := range rows {
		copy(b.cells[y], row)
	}
	return b
}

func (b *Board) Width() int  { return b.width }
func (b *Board) Height() int { return b.height }

// InBounds reports whether (x, y) lies on the board.
func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// At returns the cell at (x, y). Out-of-bounds reads return Empty.
func (b *Board) At(x, y int) Cell {
	if !b.InBounds(x, y) {
		return Empty
	}
	return b.cells[y][x]
}

// IsRowFull reports whether every cell in row y is occupied.
func (b *Board) IsRowFull(y int) bool {
	for _, c := range b.cells[y] {
		if c == Empty {
			return false
		}
	}
	return true
}

// ClearRow removes row y, shifts every row above it down by one and
// inserts an empty row at the top.
func (b *Board) ClearRow(y int) {
	row := b.cells[y]
	copy(b.cells[1:y+1], b.cells[:y])
	clear(row)
	b.cells[0] = row
}

// Merge writes every occupied cell of shape into the board at pos.
// The caller guarantees the placement is in bounds.
func (b *Board) Merge(shape Shape, pos Position) {
	for y, row := range shape {
		for x, c := range row {
			if c != Empty {
				b.cells[y+pos.Y][x+pos.X] = c
			}
		}
	}
}

// Reset empties every cell.
func (b *Board) Reset() {
	for _, row := range b.cells {
		clear(row)
	}
}

// Rows returns a copy of the board's cells.
func (b *Board) Rows() [][]Cell {
	rows := make([][]Cell, b.height)
	for y := range rows {
		rows[y] = make([]Cell, b.width)
		copy(rows[y], b.cells[y])
	}
	return rows
}

// Compose returns a copy of the board's cells with the piece drawn on top.
// Piece cells outside the board are skipped.
func Compose(b *Board, p *Piece) [][]Cell {
	rows := b.Rows()
	if p == nil {
		return rows
	}
	for y, row := range p.Shape {
		for x, c := range row {
			bx, by := x+p.Pos.X, y+p.Pos.Y
			if c != Empty && b.InBounds(bx, by) {
				rows[by][bx] = c
			}
		}
	}
	return rows
}
