// Package imageprep shrinks images under the upload byte budget the network
// enforces for post embeds.
package imageprep

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

const (
	// DefaultBudget is the blob size limit applied when the caller does not
	// supply one (just under 1 MB, matching the PDS upload limit).
	DefaultBudget = 976560

	startQuality    = 90
	qualityStep     = 10
	qualityFloor    = 30
	resetQuality    = 80
	minWidth        = 200
	downscaleFactor = 0.75
)

// Result is the final encoded image plus its dimensions. Width and Height
// always describe the returned bytes; the publish call needs them as
// aspect-ratio metadata.
type Result struct {
	Data   []byte
	Width  int
	Height int
}

// Prepare normalizes EXIF orientation and re-encodes the image as JPEG under
// the byte budget. Quality drops in fixed steps to a floor; once the floor
// is reached the image is downscaled and quality resets, repeating until the
// result fits. If quality is at the floor and the width has fallen below the
// minimum, the last encoding is returned even though it exceeds the budget,
// so the loop always terminates.
func Prepare(raw []byte, budget int) (*Result, error) {
	if budget <= 0 {
		budget = DefaultBudget
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	quality := startQuality
	for {
		data, err := encodeJPEG(img, quality)
		if err != nil {
			return nil, err
		}
		bounds := img.Bounds()

		if len(data) <= budget {
			return &Result{Data: data, Width: bounds.Dx(), Height: bounds.Dy()}, nil
		}

		if quality > qualityFloor {
			quality -= qualityStep
			if quality < qualityFloor {
				quality = qualityFloor
			}
			continue
		}

		if bounds.Dx() < minWidth {
			// Hard termination: accept the oversized, degraded result rather
			// than loop forever.
			return &Result{Data: data, Width: bounds.Dx(), Height: bounds.Dy()}, nil
		}

		img = imaging.Resize(img, int(float64(bounds.Dx())*downscaleFactor), 0, imaging.Lanczos)
		quality = resetQuality
	}
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg at quality %d: %w", quality, err)
	}
	return buf.Bytes(), nil
}
