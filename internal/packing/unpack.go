package packing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"

	"github.com/klauspost/compress/zip"
	"golang.org/x/sync/errgroup"

	"github.com/cursolab/cursolab-backend/internal/blobs"
	"github.com/cursolab/cursolab-backend/internal/platform/logger"
	"github.com/cursolab/cursolab-backend/internal/types"
)

// ErrMissingDocument is the one fatal unpack condition beyond a broken
// container: the archive has no curso.json entry.
var ErrMissingDocument = errors.New("archive is missing " + DocumentEntryName)

// Unpacker rehydrates a course archive for in-process use. Every binary
// entry found for a declared asset path is loaded into the session blob
// store and attached as a fresh handle; assets whose entry is absent come
// back with no content, never as an error.
type Unpacker interface {
	Unpack(ctx context.Context, data []byte) (*types.Course, error)
}

type unpacker struct {
	log         *logger.Logger
	blobs       *blobs.Store
	concurrency int
}

func NewUnpacker(log *logger.Logger, store *blobs.Store, concurrency int) Unpacker {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &unpacker{
		log:         log.With("service", "Unpacker"),
		blobs:       store,
		concurrency: concurrency,
	}
}

func (u *unpacker) Unpack(ctx context.Context, data []byte) (*types.Course, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		entries[f.Name] = f
	}

	doc, ok := entries[DocumentEntryName]
	if !ok {
		return nil, ErrMissingDocument
	}
	manifest, err := readEntry(doc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", DocumentEntryName, err)
	}

	var course types.Course
	if err := json.Unmarshal(manifest, &course); err != nil {
		return nil, fmt.Errorf("parse %s: %w", DocumentEntryName, err)
	}

	// Attach content to every declared asset. The archive is immutable here,
	// so per-asset loads run concurrently; each goroutine owns one asset
	// record and ordering between them does not matter.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.concurrency)

	for _, asset := range course.Media {
		if asset == nil {
			continue
		}
		asset := asset
		g.Go(func() error {
			return u.attach(gctx, entries, asset.Path, func(h blobs.Handle) {
				asset.Content = types.ResolvedRef{Handle: h}
			})
		})
	}
	for _, pose := range course.Mascot {
		if pose == nil {
			continue
		}
		pose := pose
		g.Go(func() error {
			return u.attach(gctx, entries, pose.Path, func(h blobs.Handle) {
				pose.Content = types.ResolvedRef{Handle: h}
			})
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("attach assets: %w", err)
	}

	u.log.Info("unpacked course archive",
		"course_id", course.ID,
		"modules", len(course.Modules),
		"media", len(course.Media),
		"poses", len(course.Mascot),
	)
	return &course, nil
}

func (u *unpacker) attach(ctx context.Context, entries map[string]*zip.File, entryPath string, set func(blobs.Handle)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, ok := entries[entryPath]
	if !ok {
		// Declared but absent: the asset stays content-less and renderers
		// treat it as unavailable.
		u.log.Warn("archive entry missing for declared asset", "path", entryPath)
		return nil
	}
	data, err := readEntry(f)
	if err != nil {
		u.log.Warn("could not read archive entry", "path", entryPath, "error", err)
		return nil
	}
	set(u.blobs.Put(data, mime.TypeByExtension(path.Ext(entryPath))))
	return nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
