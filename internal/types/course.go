package types

// Course is the top-level authored unit. It is owned by a single editing or
// playback session and serialized wholesale on export.
type Course struct {
	ID       string         `json:"id"`
	Settings CourseSettings `json:"settings"`
	Modules  []*Module      `json:"modules"`
	Media    []*MediaAsset  `json:"media,omitempty"`
	Mascot   []*MascotPose  `json:"mascot,omitempty"`
}

type CourseSettings struct {
	Name       string `json:"name"`
	MascotName string `json:"mascot_name"`
	Theme      string `json:"theme,omitempty"`
	Locale     string `json:"locale,omitempty"`
	RTL        bool   `json:"rtl,omitempty"`
}

// Clone returns a deep copy of the course, detached from the original's
// slices and payloads. Content values are carried over as-is; the bytes
// behind them are never mutated after attach, so sharing them is safe.
func (c *Course) Clone() *Course {
	if c == nil {
		return nil
	}
	cp := &Course{ID: c.ID, Settings: c.Settings}
	if len(c.Modules) > 0 {
		cp.Modules = make([]*Module, len(c.Modules))
		for i, m := range c.Modules {
			cp.Modules[i] = m.Clone()
		}
	}
	if len(c.Media) > 0 {
		cp.Media = make([]*MediaAsset, len(c.Media))
		for i, a := range c.Media {
			cp.Media[i] = a.Clone()
		}
	}
	if len(c.Mascot) > 0 {
		cp.Mascot = make([]*MascotPose, len(c.Mascot))
		for i, p := range c.Mascot {
			cp.Mascot[i] = p.Clone()
		}
	}
	return cp
}

// ModuleByID returns the module with the given id, or nil.
func (c *Course) ModuleByID(id string) *Module {
	for _, m := range c.Modules {
		if m != nil && m.ID == id {
			return m
		}
	}
	return nil
}

// MediaByID returns the media asset with the given id, or nil.
func (c *Course) MediaByID(id string) *MediaAsset {
	for _, a := range c.Media {
		if a != nil && a.ID == id {
			return a
		}
	}
	return nil
}

// PoseByTag returns the active pose for a tag, or nil. At most one pose per
// tag exists at a time.
func (c *Course) PoseByTag(tag PoseTag) *MascotPose {
	for _, p := range c.Mascot {
		if p != nil && p.Tag == tag {
			return p
		}
	}
	return nil
}
