package service

import (
	"bytes"
	"image"
	_ "image/jpeg"
	"image/png"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// AvatarSize is the edge length of stored avatars.
const AvatarSize = 250

// maxAvatarEdge bounds the declared dimensions of an upload. The byte limit
// alone does not bound the decoded pixel buffer.
const maxAvatarEdge = 4096

var avatarTypes = []string{"image/jpeg", "image/png"}

// normalizeAvatar checks size and format of an uploaded image, then scales it
// to cover an AvatarSize square (cropping the overflow around the centre) and
// encodes the result as PNG.
func normalizeAvatar(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, domain.NewValidationError("avatar", "is required")
	}
	if len(data) > domain.MaxAvatarBytes {
		return nil, domain.NewValidationError("avatar", "must be at most 1MB")
	}
	if mt := mimetype.Detect(data); !mimetype.EqualsAny(mt.String(), avatarTypes...) {
		return nil, domain.NewValidationError("avatar", "must be a jpg or png image")
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, domain.NewValidationError("avatar", "could not be decoded")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > maxAvatarEdge || cfg.Height > maxAvatarEdge {
		return nil, domain.NewValidationError("avatar", "must be at most 4096x4096 pixels")
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, domain.NewValidationError("avatar", "could not be decoded")
	}

	dst := image.NewRGBA(image.Rect(0, 0, AvatarSize, AvatarSize))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, coverRect(src.Bounds()), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// coverRect returns the largest centred square inside b.
func coverRect(b image.Rectangle) image.Rectangle {
	w, h := b.Dx(), b.Dy()
	if w > h {
		off := (w - h) / 2
		return image.Rect(b.Min.X+off, b.Min.Y, b.Min.X+off+h, b.Max.Y)
	}
	off := (h - w) / 2
	return image.Rect(b.Min.X, b.Min.Y+off, b.Max.X, b.Min.Y+off+w)
}
