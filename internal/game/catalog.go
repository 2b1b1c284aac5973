package game

import "fmt"

// PieceType names one of the seven tetrominoes.
type PieceType byte

const (
	PieceI PieceType = 'I'
	PieceL PieceType = 'L'
	PieceJ PieceType = 'J'
	PieceO PieceType = 'O'
	PieceZ PieceType = 'Z'
	PieceS PieceType = 'S'
	PieceT PieceType = 'T'
)

// Catalog lists every piece type in the order random spawns index into.
const Catalog = "ILJOTSZ"

// Palette maps a cell color index to its display color. Index 0 is unused.
var Palette = [8]string{
	"",
	"#FF0D72", // T
	"#0DC2FF", // I
	"#0DFF72", // S
	"#F538FF", // Z
	"#FF8E0D", // L
	"#FFE138", // O
	"#3877FF", // J
}

var colors = map[PieceType]Cell{
	PieceT: 1,
	PieceI: 2,
	PieceS: 3,
	PieceZ: 4,
	PieceL: 5,
	PieceO: 6,
	PieceJ: 7,
}

// templates hold the spawn orientation of each piece with 1 marking occupied
// cells; NewShape paints them with the piece color.
var templates = map[PieceType][][]int{
	PieceI: {
		{0, 1, 0, 0},
		{0, 1, 0, 0},
		{0, 1, 0, 0},
		{0, 1, 0, 0},
	},
	PieceL: {
		{0, 1, 0},
		{0, 1, 0},
		{0, 1, 1},
	},
	PieceJ: {
		{0, 1, 0},
		{0, 1, 0},
		{1, 1, 0},
	},
	PieceO: {
		{1, 1},
		{1, 1},
	},
	PieceZ: {
		{1, 1, 0},
		{0, 1, 1},
		{0, 0, 0},
	},
	PieceS: {
		{0, 1, 1},
		{1, 1, 0},
		{0, 0, 0},
	},
	PieceT: {
		{0, 1, 0},
		{1, 1, 1},
		{0, 0, 0},
	},
}

func (t PieceType) String() string {
	return string(t)
}

func (t PieceType) MarshalText() ([]byte, error) {
	return []byte{byte(t)}, nil
}

func (t *PieceType) UnmarshalText(text []byte) error {
	if len(text) != 1 {
		return fmt.Errorf("%w: %q", ErrUnknownPiece, text)
	}
	if _, ok := templates[PieceType(text[0])]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPiece, text)
	}
	*t = PieceType(text[0])
	return nil
}

// Color returns the cell value the piece is painted with, or Empty for an unknown type.
func (t PieceType) Color() Cell {
	return colors[t]
}

// NewShape returns a freshly allocated grid for the given piece type.
func NewShape(t PieceType) (Shape, error) {
	tmpl, ok := templates[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPiece, byte(t))
	}

	color := colors[t]
	shape := make(Shape, len(tmpl))
	for y, row := range tmpl {
		shape[y] = make([]Cell, len(row))
		for x, v := range row {
			if v != 0 {
				shape[y][x] = color
			}
		}
	}
	return shape, nil
}
