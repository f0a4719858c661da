package media

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	_ "image/jpeg"
)

// SplitGrid 将宫格图切分为 rows x cols 个 PNG 子图，按行优先顺序返回
func SplitGrid(data []byte, rows, cols int) ([][]byte, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid grid dimensions %dx%d", rows, cols)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode grid image: %w", err)
	}

	bounds := src.Bounds()
	cellW := bounds.Dx() / cols
	cellH := bounds.Dy() / rows
	if cellW == 0 || cellH == 0 {
		return nil, fmt.Errorf("grid image too small: %dx%d", bounds.Dx(), bounds.Dy())
	}

	frames := make([][]byte, 0, rows*cols)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			cell := image.NewRGBA(image.Rect(0, 0, cellW, cellH))
			origin := image.Pt(bounds.Min.X+col*cellW, bounds.Min.Y+row*cellH)
			draw.Draw(cell, cell.Bounds(), src, origin, draw.Src)

			var buf bytes.Buffer
			if err := png.Encode(&buf, cell); err != nil {
				return nil, fmt.Errorf("failed to encode grid cell: %w", err)
			}
			frames = append(frames, buf.Bytes())
		}
	}
	return frames, nil
}
