package game

// Collides reports whether any occupied cell of shape placed at pos falls
// outside the board or overlaps an occupied board cell.
func Collides(b *Board, shape Shape, pos Position) bool {
	for y, row := range shape {
		for x, c := range row {
			if c == Empty {
				continue
			}
			bx, by := x+pos.X, y+pos.Y
			if !b.InBounds(bx, by) || b.cells[by][bx] != Empty {
				return true
			}
		}
	}
	return false
}
