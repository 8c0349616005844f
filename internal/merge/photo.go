package merge

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
	"go.uber.org/zap"

	"github.com/nfc18/contactplus/internal/model"
)

// jpegQualityLadder lists the re-encode qualities tried, in order, before
// each dimension halving.
var jpegQualityLadder = []int{85, 70, 55, 40}

// maxHalvings bounds the dimension-reduction ladder. Four halvings shrink a
// 4096px photo to 256px; anything still too large after that is dropped.
const maxHalvings = 4

// resolvePhoto picks the photo with the largest byte size across members (a
// proxy for resolution) and fits it under the ceiling via the downsampling
// ladder. Photo handling never fails the merge: any decode or encode problem
// degrades to no photo.
func (r *Resolver) resolvePhoto(members []*model.SourceRecord) *model.Photo {
	var best *model.Photo
	for _, m := range members {
		if m.Photo == nil || len(m.Photo.Data) == 0 {
			continue
		}
		if best == nil || len(m.Photo.Data) > len(best.Data) {
			best = m.Photo
		}
	}
	if best == nil {
		return nil
	}
	if r.PhotoCeiling <= 0 || len(best.Data) <= r.PhotoCeiling {
		// Copy so later member mutation cannot alias the canonical output.
		return &model.Photo{Data: append([]byte(nil), best.Data...), Format: best.Format}
	}

	fitted := fitPhoto(best.Data, r.PhotoCeiling)
	if fitted == nil {
		zap.L().Warn("merge: photo dropped, does not fit under ceiling",
			zap.Int("size", len(best.Data)),
			zap.Int("ceiling", r.PhotoCeiling),
		)
		return nil
	}
	return &model.Photo{Data: fitted, Format: "jpeg"}
}

// fitPhoto walks the quality/dimension ladder until the JPEG encoding fits
// under ceiling bytes. Returns nil when even the smallest rung is too large
// or the image cannot be decoded.
func fitPhoto(data []byte, ceiling int) []byte {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		zap.L().Warn("merge: photo decode failed", zap.Error(err))
		return nil
	}

	for halving := 0; halving <= maxHalvings; halving++ {
		for _, q := range jpegQualityLadder {
			var buf bytes.Buffer
			if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
				zap.L().Warn("merge: photo encode failed", zap.Error(err))
				return nil
			}
			if buf.Len() <= ceiling {
				return buf.Bytes()
			}
		}
		w := img.Bounds().Dx() / 2
		if w < 1 {
			break
		}
		img = resize.Resize(uint(w), 0, img, resize.Lanczos3)
	}
	return nil
}
