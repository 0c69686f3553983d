package packing

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cursolab/cursolab-backend/internal/types"
)

// DocumentEntryName is the well-known manifest entry inside every course
// archive. Unpacking fails outright when it is absent.
const DocumentEntryName = "curso.json"

const defaultMascotSlug = "mascot"

var nonAlnumRuns = regexp.MustCompile(`[^A-Za-z0-9]+`)

// MascotSlug reduces a mascot name to archive-safe form: runs of anything
// outside [A-Za-z0-9] collapse to a single underscore, leading and trailing
// underscores are trimmed, and an empty result falls back to "mascot".
func MascotSlug(name string) string {
	s := nonAlnumRuns.ReplaceAllString(name, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return defaultMascotSlug
	}
	return s
}

// MascotPosePath is the canonical in-archive entry name for a pose. The
// extension is always .png because poses are normalized before packing.
func MascotPosePath(mascotName string, tag types.PoseTag) string {
	return fmt.Sprintf("mascot/%s_%s.png", MascotSlug(mascotName), tag)
}

// BuildDocument produces the archive manifest value: a copy of the course
// filtered to the selected modules (all modules when moduleIDs is empty),
// with canonical mascot paths applied and no content state attached. The
// input course is not mutated.
//
// Mascot poses are course-global and never filtered. A filter ID that names
// no module is an error; an empty selection is a caller-side usage error and
// is not checked here.
func BuildDocument(course *types.Course, moduleIDs []string) (*types.Course, error) {
	if course == nil {
		return nil, fmt.Errorf("course is nil")
	}

	modules, err := selectModules(course, moduleIDs)
	if err != nil {
		return nil, err
	}
	for _, m := range modules {
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("serialize course %s: %w", course.ID, err)
		}
	}

	doc := &types.Course{
		ID:       course.ID,
		Settings: course.Settings,
		Modules:  modules,
	}

	for _, a := range course.Media {
		if a == nil {
			continue
		}
		cp := *a
		cp.Content = nil
		doc.Media = append(doc.Media, &cp)
	}

	// Mascot paths depend on the mascot name at export time; renaming the
	// mascot renames every pose entry on the next export.
	for _, p := range course.Mascot {
		if p == nil {
			continue
		}
		doc.Mascot = append(doc.Mascot, &types.MascotPose{
			Tag:  p.Tag,
			Path: MascotPosePath(course.Settings.MascotName, p.Tag),
		})
	}

	return doc, nil
}

func selectModules(course *types.Course, moduleIDs []string) ([]*types.Module, error) {
	if len(moduleIDs) == 0 {
		out := make([]*types.Module, 0, len(course.Modules))
		for _, m := range course.Modules {
			if m != nil {
				out = append(out, m)
			}
		}
		return out, nil
	}

	selected := make(map[string]bool, len(moduleIDs))
	for _, id := range moduleIDs {
		if course.ModuleByID(id) == nil {
			return nil, fmt.Errorf("module filter references unknown module %q", id)
		}
		selected[id] = true
	}

	// Course order, not filter order, so output is deterministic.
	var out []*types.Module
	for _, m := range course.Modules {
		if m != nil && selected[m.ID] {
			out = append(out, m)
		}
	}
	return out, nil
}
