package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	_ "image/gif"
	_ "image/jpeg"

	"golang.org/x/image/draw"

	"github.com/cursolab/cursolab-backend/internal/platform/logger"
)

// PoseSize is the fixed square edge of every mascot pose inside an archive.
const PoseSize = 1500

// PoseNormalizer forces arbitrary raster input into a PoseSize×PoseSize PNG.
// Source content is stretched to fill the square; existing archives depend on
// that exact behavior, so no aspect-ratio preservation or letterboxing.
type PoseNormalizer interface {
	Normalize(ctx context.Context, raw []byte) ([]byte, error)
}

type poseNormalizer struct {
	log *logger.Logger
}

func NewPoseNormalizer(log *logger.Logger) PoseNormalizer {
	return &poseNormalizer{log: log.With("service", "PoseNormalizer")}
}

func (n *poseNormalizer) Normalize(ctx context.Context, raw []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode pose image: %w", err)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, PoseSize, PoseSize))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var out bytes.Buffer
	if err := png.Encode(&out, dst); err != nil {
		return nil, fmt.Errorf("encode pose png: %w", err)
	}
	return out.Bytes(), nil
}
