package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
)

// Reference input geometry expected by the img2img pipeline.
const (
	ReferenceWidth  = 768
	ReferenceHeight = 512
)

const jpegQuality = 90

// NormalizeReference decodes an arbitrary image and rescales it to the fixed
// RGB geometry the generation backend expects, re-encoded as JPEG.
func NormalizeReference(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode reference: %w", err)
	}
	dst := image.NewRGBA(image.Rect(0, 0, ReferenceWidth, ReferenceHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return EncodeJPEG(dst)
}

// EncodeJPEG serializes img with the service-wide quality setting.
func EncodeJPEG(img image.Image) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("imaging: encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
