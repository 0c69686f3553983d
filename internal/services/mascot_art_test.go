package services

import (
	"bytes"
	"context"
	"image"
	"testing"

	"github.com/cursolab/cursolab-backend/internal/types"
)

func TestRenderPoseProducesPNG(t *testing.T) {
	art, err := NewMascotArtService(testLogger(t))
	if err != nil {
		t.Fatalf("NewMascotArtService: %v", err)
	}
	raw, err := art.RenderPose(context.Background(), "Dino", types.PoseHappy)
	if err != nil {
		t.Fatalf("RenderPose: %v", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if format != "png" || cfg.Width != cfg.Height {
		t.Errorf("pose is %s %dx%d, want square png", format, cfg.Width, cfg.Height)
	}
}

func TestRenderDefaultSetCoversWellKnownPoses(t *testing.T) {
	art, err := NewMascotArtService(testLogger(t))
	if err != nil {
		t.Fatalf("NewMascotArtService: %v", err)
	}
	set, err := art.RenderDefaultSet(context.Background(), "Robo")
	if err != nil {
		t.Fatalf("RenderDefaultSet: %v", err)
	}
	for _, tag := range types.WellKnownPoses {
		if len(set[tag]) == 0 {
			t.Errorf("missing generated art for pose %s", tag)
		}
	}
}

func TestRenderPoseCustomTag(t *testing.T) {
	art, err := NewMascotArtService(testLogger(t))
	if err != nil {
		t.Fatalf("NewMascotArtService: %v", err)
	}
	if _, err := art.RenderPose(context.Background(), "Robo", types.PoseTag("celebrating")); err != nil {
		t.Fatalf("RenderPose custom tag: %v", err)
	}
}
