package game

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShape(t *testing.T) {
	sizes := map[PieceType]int{
		PieceI: 4,
		PieceL: 3,
		PieceJ: 3,
		PieceO: 2,
		PieceZ: 3,
		PieceS: 3,
		PieceT: 3,
	}

	for _, r := range Catalog {
		pt := PieceType(r)
		t.Run(pt.String(), func(t *testing.T) {
			shape, err := NewShape(pt)
			require.NoError(t, err)

			require.Len(t, shape, sizes[pt])
			occupied := 0
			for _, row := range shape {
				require.Len(t, row, sizes[pt], "shape must be square")
				for _, c := range row {
					if c != Empty {
						assert.Equal(t, pt.Color(), c)
						occupied++
					}
				}
			}
			assert.Equal(t, 4, occupied)
		})
	}
}

func TestNewShapeColors(t *testing.T) {
	want := map[PieceType]Cell{
		PieceT: 1,
		PieceI: 2,
		PieceS: 3,
		PieceZ: 4,
		PieceL: 5,
		PieceO: 6,
		PieceJ: 7,
	}
	for pt, c := range want {
		assert.Equal(t, c, pt.Color(), "color of %s", pt)
		assert.NotEmpty(t, Palette[c])
	}
}

func TestNewShapeIsFresh(t *testing.T) {
	a, err := NewShape(PieceT)
	require.NoError(t, err)
	a[0][0] = 7
	a.Rotate(1)

	b, err := NewShape(PieceT)
	require.NoError(t, err)
	assert.Equal(t, Shape{
		{0, 1, 0},
		{1, 1, 1},
		{0, 0, 0},
	}, b)
}

func TestNewShapeUnknown(t *testing.T) {
	_, err := NewShape(PieceType('X'))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownPiece))
}

func TestPieceTypeJSON(t *testing.T) {
	data, err := json.Marshal(PieceL)
	require.NoError(t, err)
	assert.Equal(t, `"L"`, string(data))

	var pt PieceType
	require.NoError(t, json.Unmarshal(data, &pt))
	assert.Equal(t, PieceL, pt)

	err = json.Unmarshal([]byte(`"Q"`), &pt)
	assert.ErrorIs(t, err, ErrUnknownPiece)
}
