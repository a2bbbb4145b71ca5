package arcface

import (
	"fmt"
	"image"

	"github.com/nfnt/resize"
)

// InputSize is the edge length of the aligned crop ArcFace expects.
const InputSize = 112

const (
	pixelMean  = 127.5
	pixelScale = 127.5
)

// PrepareInput resizes img to InputSize x InputSize and writes it into dst
// as a normalised NCHW RGB tensor.
func PrepareInput(img image.Image, dst []float32) error {
	channelSize := InputSize * InputSize
	if len(dst) < channelSize*3 {
		return fmt.Errorf("destination tensor holds %d floats, needs %d", len(dst), channelSize*3)
	}
	red := dst[0:channelSize]
	green := dst[channelSize : channelSize*2]
	blue := dst[channelSize*2 : channelSize*3]

	b := img.Bounds()
	if b.Dx() != InputSize || b.Dy() != InputSize {
		img = resize.Resize(InputSize, InputSize, img, resize.Bilinear)
		b = img.Bounds()
	}

	i := 0
	for y := b.Min.Y; y < b.Min.Y+InputSize; y++ {
		for x := b.Min.X; x < b.Min.X+InputSize; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			red[i] = (float32(r>>8) - pixelMean) / pixelScale
			green[i] = (float32(g>>8) - pixelMean) / pixelScale
			blue[i] = (float32(bl>>8) - pixelMean) / pixelScale
			i++
		}
	}
	return nil
}
