package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustShape(t *testing.T, pt PieceType) Shape {
	t.Helper()
	shape, err := NewShape(pt)
	require.NoError(t, err)
	return shape
}

func TestRotateClockwise(t *testing.T) {
	shape := mustShape(t, PieceT)
	shape.Rotate(1)

	assert.Equal(t, Shape{
		{0, 1, 0},
		{0, 1, 1},
		{0, 1, 0},
	}, shape)
}

func TestRotateCounterClockwise(t *testing.T) {
	shape := mustShape(t, PieceT)
	shape.Rotate(-1)

	assert.Equal(t, Shape{
		{0, 1, 0},
		{1, 1, 0},
		{0, 1, 0},
	}, shape)
}

func TestRotateHandedness(t *testing.T) {
	shape := mustShape(t, PieceL)
	shape.Rotate(1)

	// L's foot at the bottom-right swings to the bottom-left.
	assert.Equal(t, Shape{
		{0, 0, 0},
		{5, 5, 5},
		{5, 0, 0},
	}, shape)

	shape.Rotate(-1)
	assert.Equal(t, mustShape(t, PieceL), shape)
}

func TestRotateFourTimesIsIdentity(t *testing.T) {
	for _, r := range Catalog {
		pt := PieceType(r)
		for _, dir := range []int{1, -1} {
			shape := mustShape(t, pt)
			for i := 0; i < 4; i++ {
				shape.Rotate(dir)
			}
			assert.Equal(t, mustShape(t, pt), shape, "%s dir=%d", pt, dir)
		}
	}
}

func TestPieceClone(t *testing.T) {
	p := &Piece{Type: PieceS, Shape: mustShape(t, PieceS), Pos: Position{X: 3, Y: 4}}
	c := p.Clone()
	c.Shape.Rotate(1)
	c.Pos.X++

	assert.Equal(t, mustShape(t, PieceS), p.Shape)
	assert.Equal(t, 3, p.Pos.X)

	var nilPiece *Piece
	assert.Nil(t, nilPiece.Clone())
}
