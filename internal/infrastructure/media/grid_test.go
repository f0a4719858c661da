package media

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodeGrid(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	cellW, cellH := width/3, height/3
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			row, col := y/cellH, x/cellW
			img.Set(x, y, color.RGBA{R: uint8(row * 80), G: uint8(col * 80), B: 0, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestSplitGrid(t *testing.T) {
	data := encodeGrid(t, 300, 270)

	frames, err := SplitGrid(data, 3, 3)
	if err != nil {
		t.Fatalf("SplitGrid: %v", err)
	}
	if len(frames) != 9 {
		t.Fatalf("got %d frames, want 9", len(frames))
	}

	for i, frame := range frames {
		img, err := png.Decode(bytes.NewReader(frame))
		if err != nil {
			t.Fatalf("frame %d: decode: %v", i, err)
		}
		bounds := img.Bounds()
		if bounds.Dx() != 100 || bounds.Dy() != 90 {
			t.Errorf("frame %d: size = %dx%d, want 100x90", i, bounds.Dx(), bounds.Dy())
		}

		// 帧按行优先排列，取中心像素验证来源单元格
		r, g, _, _ := img.At(bounds.Min.X+50, bounds.Min.Y+45).RGBA()
		wantR, wantG := uint32(i/3*80)*257, uint32(i%3*80)*257
		if r != wantR || g != wantG {
			t.Errorf("frame %d: center pixel = (%d,%d), want (%d,%d)", i, r>>8, g>>8, wantR>>8, wantG>>8)
		}
	}
}

func TestSplitGridRejectsGarbage(t *testing.T) {
	if _, err := SplitGrid([]byte("not an image"), 3, 3); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestSplitGridTooSmall(t *testing.T) {
	var buf bytes.Buffer
	png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2)))
	if _, err := SplitGrid(buf.Bytes(), 3, 3); err == nil {
		t.Fatal("expected error for image smaller than grid")
	}
}
