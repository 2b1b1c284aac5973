package game

// Shape is a square grid of cells. The active piece owns its shape and
// rotates it in place.
type Shape [][]Cell

// Width returns the number of columns in the shape.
func (s Shape) Width() int {
	if len(s) == 0 {
		return 0
	}
	return len(s[0])
}

// Clone returns a deep copy of the shape.
func (s Shape) Clone() Shape {
	if s == nil {
		return nil
	}
	out := make(Shape, len(s))
	for y, row := range s {
		out[y] = make([]Cell, len(row))
		copy(out[y], row)
	}
	return out
}

// Rotate turns the shape 90 degrees in place: clockwise for dir > 0,
// counter-clockwise otherwise. It transposes the grid, then reverses each
// row (clockwise) or the row order (counter-clockwise).
func (s Shape) Rotate(dir int) {
	for y := range s {
		for x := 0; x < y; x++ {
			s[x][y], s[y][x] = s[y][x], s[x][y]
		}
	}

	if dir > 0 {
		for _, row := range s {
			for i, j := 0, len(row)-1; i < j; i, j = i+1, j-1 {
				row[i], row[j] = row[j], row[i]
			}
		}
		return
	}

	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// Piece is the falling piece: its own shape plus a board-relative offset.
type Piece struct {
	Type  PieceType `json:"type"`
	Shape Shape     `json:"shape"`
	Pos   Position  `json:"pos"`
}

// Clone returns a deep copy of the piece, or nil for a nil piece.
func (p *Piece) Clone() *Piece {
	if p == nil {
		return nil
	}
	return &Piece{
		Type:  p.Type,
		Shape: p.Shape.Clone(),
		Pos:   p.Pos,
	}
}
