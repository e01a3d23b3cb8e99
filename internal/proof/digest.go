package proof

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
)

// imageOrientation extracts the EXIF orientation from JPEG data, defaulting
// to 1 when no usable EXIF block is present.
func imageOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	orientation, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	val, err := orientation.Int(0)
	if err != nil {
		return 1
	}
	return val
}

// correctOrientation applies the EXIF orientation so the digest reads the way
// the photographer framed it.
func correctOrientation(img image.Image, orientation int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	switch orientation {
	case 3: // Rotate 180
		out := image.NewRGBA(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				out.Set(width-1-x, height-1-y, img.At(bounds.Min.X+x, bounds.Min.Y+y))
			}
		}
		return out
	case 6: // Rotate 90 clockwise
		out := image.NewRGBA(image.Rect(0, 0, height, width))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				out.Set(height-1-y, x, img.At(bounds.Min.X+x, bounds.Min.Y+y))
			}
		}
		return out
	case 8: // Rotate 90 counter-clockwise
		out := image.NewRGBA(image.Rect(0, 0, height, width))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				out.Set(y, width-1-x, img.At(bounds.Min.X+x, bounds.Min.Y+y))
			}
		}
		return out
	default:
		return img
	}
}

// Digest produces the compact visual proof kept on a PhotoProof entry: the
// photo downscaled to maxDim on its longest side and re-encoded as JPEG.
// Full-resolution bytes are never persisted.
func Digest(data []byte, maxDim, quality int) ([]byte, error) {
	orientation := imageOrientation(data)

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if orientation != 1 {
		img = correctOrientation(img, orientation)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width > maxDim || height > maxDim {
		scaleX := float64(maxDim) / float64(width)
		scaleY := float64(maxDim) / float64(height)
		scale := scaleX
		if scaleY < scaleX {
			scale = scaleY
		}
		newWidth := int(float64(width) * scale)
		newHeight := int(float64(height) * scale)
		if newWidth < 1 {
			newWidth = 1
		}
		if newHeight < 1 {
			newHeight = 1
		}

		scaled := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
		draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Over, nil)
		img = scaled
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode digest: %w", err)
	}
	return buf.Bytes(), nil
}
