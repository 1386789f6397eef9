// Package imaging post-processes downloaded cover art.
package imaging

import (
	"bytes"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"golang.org/x/image/draw"
)

// Service provides the optional cover-art transformations: resizing to a
// maximum dimension and conversion to JPEG. Both are lossy conveniences;
// failures here never fail a download, the original bytes are kept.
type Service struct{}

// NewService creates a new Service.
func NewService() *Service {
	return &Service{}
}

// Resize scales the image down to fit within maxWidth x maxHeight while
// preserving the aspect ratio, returning JPEG-encoded bytes. Images that
// already fit are re-encoded unchanged in size.
//
// Catmull-Rom interpolation is used for quality over speed; cover art is
// small and resized once.
func (s *Service) Resize(data []byte, maxWidth, maxHeight int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width > maxWidth || height > maxHeight {
		ratio := float64(width) / float64(height)
		if float64(maxWidth)/float64(maxHeight) > ratio {
			width = int(float64(maxHeight) * ratio)
			height = maxHeight
		} else {
			height = int(float64(maxWidth) / ratio)
			width = maxWidth
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ConvertToJPEG re-encodes any supported image as JPEG with 90% quality.
func (s *Service) ConvertToJPEG(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
