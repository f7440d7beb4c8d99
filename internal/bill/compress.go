package bill

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

const (
	maxImageSide   = 1200
	targetImageLen = 800 * 1024
	startQuality   = 80
	minQuality     = 30
	qualityStep    = 10
)

// Recompress re-encodes a photographed bill as JPEG, shrinking it so the
// longest side is at most 1200px and stepping quality down from 80 until the
// result is under 800KB. The smallest attempt is returned if none fit.
func Recompress(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	if b.Dx() > maxImageSide || b.Dy() > maxImageSide {
		img = imaging.Fit(img, maxImageSide, maxImageSide, imaging.Lanczos)
	}

	var out []byte
	for q := startQuality; q >= minQuality; q -= qualityStep {
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(q)); err != nil {
			return nil, fmt.Errorf("encode image: %w", err)
		}
		out = buf.Bytes()
		if len(out) <= targetImageLen {
			break
		}
	}
	return out, nil
}
