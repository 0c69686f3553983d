package types

import "github.com/cursolab/cursolab-backend/internal/blobs"

type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
	MediaAudio MediaKind = "audio"
)

// Content is the dual-state content reference for an asset: either a raw
// upload attached this session (pending) or a session-local blob handle
// (resolved). Modeling it as a union keeps "both absent" unrepresentable for
// any asset that actually carries content.
type Content interface {
	isContent()
}

// PendingUpload holds raw bytes from a freshly attached file that have not
// been through the resolver yet.
type PendingUpload struct {
	Data     []byte
	MimeType string
}

func (PendingUpload) isContent() {}

// ResolvedRef points at content already held by the session blob store.
type ResolvedRef struct {
	Handle blobs.Handle
}

func (ResolvedRef) isContent() {}

// MediaAsset is a binary asset referenced by modules. Path is assigned at
// attach time and stays stable for the asset's life; it doubles as the
// canonical in-archive entry name. Content is never serialized.
type MediaAsset struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Kind MediaKind `json:"kind"`
	Path string    `json:"path"`

	Content Content `json:"-"`
}

// Clone returns a copy of the asset record. Content is shared.
func (a *MediaAsset) Clone() *MediaAsset {
	if a == nil {
		return nil
	}
	cp := *a
	return &cp
}

// PoseTag names a mascot pose. The four well-known tags cover the player's
// built-in feedback states; arbitrary custom tags are accepted and
// round-tripped as-is.
type PoseTag string

const (
	PoseHappy      PoseTag = "happy"
	PoseExplaining PoseTag = "explaining"
	PoseThinking   PoseTag = "thinking"
	PoseSad        PoseTag = "sad"
)

// WellKnownPoses is the default tag set, in canonical order.
var WellKnownPoses = []PoseTag{PoseHappy, PoseExplaining, PoseThinking, PoseSad}

// MascotPose is one illustration of the course mascot. Path is rewritten by
// the serializer at export time (it depends on the mascot name setting).
type MascotPose struct {
	Tag  PoseTag `json:"tag"`
	Path string  `json:"path"`

	Content Content `json:"-"`
}

// Clone returns a copy of the pose record. Content is shared.
func (p *MascotPose) Clone() *MascotPose {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}
