// coursepack packs and unpacks course archives on disk, without the server:
//
//	coursepack -unpack course.zip -out ./course
//	coursepack -pack ./course -out course.zip -modules m1,m2
//
// A directory course is its curso.json plus the binary asset files the
// manifest references, laid out by canonical path.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cursolab/cursolab-backend/internal/blobs"
	"github.com/cursolab/cursolab-backend/internal/packing"
	"github.com/cursolab/cursolab-backend/internal/platform/envutil"
	"github.com/cursolab/cursolab-backend/internal/platform/logger"
	"github.com/cursolab/cursolab-backend/internal/services"
	"github.com/cursolab/cursolab-backend/internal/types"
)

func main() {
	packDir := flag.String("pack", "", "course directory to pack")
	unpackFile := flag.String("unpack", "", "archive to unpack")
	out := flag.String("out", "", "output path (archive file or directory)")
	modules := flag.String("modules", "", "comma-separated module ids to include (pack only)")
	flag.Parse()

	log, err := logger.New(envutil.String("LOG_MODE", "production"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	switch {
	case *packDir != "" && *unpackFile == "":
		err = runPack(log, *packDir, *out, splitIDs(*modules))
	case *unpackFile != "" && *packDir == "":
		err = runUnpack(log, *unpackFile, *out)
	default:
		err = fmt.Errorf("exactly one of -pack or -unpack is required")
	}
	if err != nil {
		log.Error("coursepack failed", "error", err)
		os.Exit(1)
	}
}

func runPack(log *logger.Logger, dir, out string, moduleIDs []string) error {
	if out == "" {
		out = "course.zip"
	}
	course, err := loadCourseDir(dir)
	if err != nil {
		return err
	}

	store := blobs.NewStore(log)
	resolver := services.NewAssetResolver(log, store)
	normalizer := services.NewPoseNormalizer(log)
	packer := packing.NewPacker(log, resolver, normalizer, envutil.Int("PACK_CONCURRENCY", 8))

	result, err := packer.Pack(context.Background(), course, moduleIDs)
	if err != nil {
		return err
	}
	for _, w := range result.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}
	return os.WriteFile(out, result.Data, 0o644)
}

func runUnpack(log *logger.Logger, file, out string) error {
	if out == "" {
		out = "."
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	store := blobs.NewStore(log)
	unpacker := packing.NewUnpacker(log, store, envutil.Int("PACK_CONCURRENCY", 8))
	course, err := unpacker.Unpack(context.Background(), data)
	if err != nil {
		return err
	}

	manifest, err := json.MarshalIndent(course, "", "  ")
	if err != nil {
		return err
	}
	if err := writeFile(filepath.Join(out, packing.DocumentEntryName), manifest); err != nil {
		return err
	}

	write := func(path string, content types.Content) error {
		ref, ok := content.(types.ResolvedRef)
		if !ok {
			fmt.Fprintf(os.Stderr, "warning: no content for %s\n", path)
			return nil
		}
		raw, _, err := store.Get(ref.Handle)
		if err != nil {
			return err
		}
		return writeFile(filepath.Join(out, filepath.FromSlash(path)), raw)
	}
	for _, a := range course.Media {
		if a == nil {
			continue
		}
		if err := write(a.Path, a.Content); err != nil {
			return err
		}
	}
	for _, p := range course.Mascot {
		if p == nil {
			continue
		}
		if err := write(p.Path, p.Content); err != nil {
			return err
		}
	}
	store.ReleaseAll()
	return nil
}

// loadCourseDir reads curso.json from dir and attaches each referenced
// binary file as a pending upload. Missing files are tolerated the same way
// the packer tolerates unresolvable assets.
func loadCourseDir(dir string) (*types.Course, error) {
	manifest, err := os.ReadFile(filepath.Join(dir, packing.DocumentEntryName))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", packing.DocumentEntryName, err)
	}
	var course types.Course
	if err := json.Unmarshal(manifest, &course); err != nil {
		return nil, fmt.Errorf("parse %s: %w", packing.DocumentEntryName, err)
	}

	attach := func(path string) types.Content {
		raw, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(path)))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %s: %v\n", path, err)
			return nil
		}
		return types.PendingUpload{Data: raw}
	}
	for _, a := range course.Media {
		if a != nil {
			a.Content = attach(a.Path)
		}
	}
	for _, p := range course.Mascot {
		if p != nil {
			p.Content = attach(p.Path)
		}
	}
	return &course, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func splitIDs(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}
