package services

import (
	"bytes"
	"fmt"
	"io"

	"github.com/disintegration/imaging"

	apperrors "github.com/charlesng35/notesd/pkg/errors"
)

// AvatarContentType is the media type of every stored avatar.
const AvatarContentType = "image/jpeg"

// ErrNotAnImage is returned when an upload cannot be decoded as an image.
var ErrNotAnImage = apperrors.NewValidation("Not an image")

// AvatarOptions controls avatar normalisation.
type AvatarOptions struct {
	Width   int
	Height  int
	Quality int
}

// AvatarProcessor crops and re-encodes uploaded images.
type AvatarProcessor struct {
	opts AvatarOptions
}

// NewAvatarProcessor applies defaults of 500x500 at JPEG quality 90.
func NewAvatarProcessor(opts AvatarOptions) *AvatarProcessor {
	if opts.Width <= 0 {
		opts.Width = 500
	}
	if opts.Height <= 0 {
		opts.Height = 500
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = 90
	}
	return &AvatarProcessor{opts: opts}
}

// Process decodes src, fills the target box from the centre and encodes JPEG.
func (p *AvatarProcessor) Process(src io.Reader) ([]byte, error) {
	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return nil, ErrNotAnImage.WithInternal(err)
	}

	resized := imaging.Fill(img, p.opts.Width, p.opts.Height, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(p.opts.Quality)); err != nil {
		return nil, internal(fmt.Errorf("avatar: encode jpeg: %w", err))
	}
	return buf.Bytes(), nil
}
