package packing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zip"
	"golang.org/x/sync/errgroup"

	"github.com/cursolab/cursolab-backend/internal/platform/logger"
	"github.com/cursolab/cursolab-backend/internal/services"
	"github.com/cursolab/cursolab-backend/internal/types"
)

// PackResult is the finished archive plus the per-asset problems that were
// tolerated while building it. Warnings never affect success.
type PackResult struct {
	Data     []byte
	Warnings []string
}

// Packer assembles a course and its resolved assets into a single zip blob.
// A single missing or corrupt asset is skipped with a warning; only a
// malformed course or a container write failure is fatal.
type Packer interface {
	Pack(ctx context.Context, course *types.Course, moduleIDs []string) (*PackResult, error)
}

type packer struct {
	log         *logger.Logger
	resolver    services.AssetResolver
	normalizer  services.PoseNormalizer
	concurrency int
}

func NewPacker(log *logger.Logger, resolver services.AssetResolver, normalizer services.PoseNormalizer, concurrency int) Packer {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &packer{
		log:         log.With("service", "Packer"),
		resolver:    resolver,
		normalizer:  normalizer,
		concurrency: concurrency,
	}
}

func (p *packer) Pack(ctx context.Context, course *types.Course, moduleIDs []string) (*PackResult, error) {
	doc, err := BuildDocument(course, moduleIDs)
	if err != nil {
		return nil, err
	}
	manifest, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", DocumentEntryName, err)
	}

	result := &PackResult{}

	// Resolve (and for poses, normalize) every asset up front. Work fans out
	// concurrently and joins before the container is written, so entry order
	// always follows course order.
	mediaBytes := make([][]byte, len(course.Media))
	poseBytes := make([][]byte, len(course.Mascot))
	mediaWarn := make([]string, len(course.Media))
	poseWarn := make([]string, len(course.Mascot))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, asset := range course.Media {
		if asset == nil {
			continue
		}
		i, asset := i, asset
		g.Go(func() error {
			data, err := p.resolver.Resolve(gctx, asset.Content)
			if err != nil {
				mediaWarn[i] = fmt.Sprintf("media %s (%s) skipped: %v", asset.ID, asset.Path, err)
				return nil
			}
			mediaBytes[i] = data
			return nil
		})
	}

	for i, pose := range course.Mascot {
		if pose == nil {
			continue
		}
		i, pose := i, pose
		g.Go(func() error {
			data, err := p.resolver.Resolve(gctx, pose.Content)
			if err != nil {
				poseWarn[i] = fmt.Sprintf("mascot pose %s skipped: %v", pose.Tag, err)
				return nil
			}
			// Always re-normalize, even content that looks normalized
			// already; the pass doubles as a format check.
			normalized, err := p.normalizer.Normalize(gctx, data)
			if err != nil {
				poseWarn[i] = fmt.Sprintf("mascot pose %s not normalized, packing original: %v", pose.Tag, err)
				poseBytes[i] = data
				return nil
			}
			poseBytes[i] = normalized
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("resolve assets: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.Create(DocumentEntryName)
	if err != nil {
		return nil, fmt.Errorf("create %s entry: %w", DocumentEntryName, err)
	}
	if _, err := w.Write(manifest); err != nil {
		return nil, fmt.Errorf("write %s entry: %w", DocumentEntryName, err)
	}

	for i, asset := range course.Media {
		if asset == nil {
			continue
		}
		if mediaBytes[i] == nil {
			// The document still references this path; the player already
			// tolerates missing media.
			p.warn(result, mediaWarn[i])
			continue
		}
		if err := writeEntry(zw, asset.Path, mediaBytes[i]); err != nil {
			return nil, err
		}
	}

	for i, pose := range course.Mascot {
		if pose == nil {
			continue
		}
		if poseWarn[i] != "" {
			p.warn(result, poseWarn[i])
		}
		if poseBytes[i] == nil {
			continue
		}
		path := MascotPosePath(course.Settings.MascotName, pose.Tag)
		if err := writeEntry(zw, path, poseBytes[i]); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}

	result.Data = buf.Bytes()
	p.log.Info("packed course archive",
		"course_id", course.ID,
		"modules", len(doc.Modules),
		"bytes", len(result.Data),
		"warnings", len(result.Warnings),
	)
	return result, nil
}

func (p *packer) warn(result *PackResult, msg string) {
	if msg == "" {
		return
	}
	p.log.Warn(msg)
	result.Warnings = append(result.Warnings, msg)
}

func writeEntry(zw *zip.Writer, path string, data []byte) error {
	w, err := zw.Create(path)
	if err != nil {
		return fmt.Errorf("create %s entry: %w", path, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write %s entry: %w", path, err)
	}
	return nil
}
