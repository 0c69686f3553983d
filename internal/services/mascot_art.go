package services

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"github.com/cursolab/cursolab-backend/internal/platform/logger"
	"github.com/cursolab/cursolab-backend/internal/types"
)

// MascotArtService renders placeholder pose images for courses whose creator
// has not uploaded mascot art yet. The output goes through the normalizer at
// pack time like any uploaded pose, so the render size only needs to be
// roughly right.
type MascotArtService interface {
	RenderPose(ctx context.Context, mascotName string, tag types.PoseTag) ([]byte, error)
	RenderDefaultSet(ctx context.Context, mascotName string) (map[types.PoseTag][]byte, error)
}

type mascotArtService struct {
	log      *logger.Logger
	fontFace font.Face

	bodyColors map[types.PoseTag]color.NRGBA
}

// NewMascotArtService loads the label font from MASCOT_FONT when set; without
// a font the poses render as plain faces with no name initial.
func NewMascotArtService(log *logger.Logger) (MascotArtService, error) {
	serviceLog := log.With("service", "MascotArtService")

	var face font.Face
	if fontPath := strings.TrimSpace(os.Getenv("MASCOT_FONT")); fontPath != "" {
		f, err := loadFontFace(fontPath, 96)
		if err != nil {
			return nil, fmt.Errorf("could not load mascot font: %w", err)
		}
		face = f
		serviceLog.Info("Loaded mascot font", "font", fontPath)
	}

	return &mascotArtService{
		log:      serviceLog,
		fontFace: face,
		bodyColors: map[types.PoseTag]color.NRGBA{
			types.PoseHappy:      {R: 0x3C, G: 0xB3, B: 0x71, A: 0xFF},
			types.PoseExplaining: {R: 0x3B, G: 0x82, B: 0xF6, A: 0xFF},
			types.PoseThinking:   {R: 0xF5, G: 0x9E, B: 0x0B, A: 0xFF},
			types.PoseSad:        {R: 0x8B, G: 0x5C, B: 0xF6, A: 0xFF},
		},
	}, nil
}

func (s *mascotArtService) RenderDefaultSet(ctx context.Context, mascotName string) (map[types.PoseTag][]byte, error) {
	out := make(map[types.PoseTag][]byte, len(types.WellKnownPoses))
	for _, tag := range types.WellKnownPoses {
		img, err := s.RenderPose(ctx, mascotName, tag)
		if err != nil {
			return nil, err
		}
		out[tag] = img
	}
	return out, nil
}

func (s *mascotArtService) RenderPose(ctx context.Context, mascotName string, tag types.PoseTag) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	const size = 600

	dc := gg.NewContext(size, size)

	// Body: rounded square on transparent background.
	body := s.bodyColor(tag)
	dc.SetColor(body)
	dc.DrawRoundedRectangle(60, 60, size-120, size-120, 80)
	dc.Fill()

	// Eyes.
	dc.SetColor(color.White)
	dc.DrawCircle(size*0.38, size*0.42, 46)
	dc.DrawCircle(size*0.62, size*0.42, 46)
	dc.Fill()
	dc.SetColor(color.Black)
	pupilY := size * 0.42
	if tag == types.PoseThinking {
		pupilY = size * 0.39
	}
	dc.DrawCircle(size*0.38, pupilY, 18)
	dc.DrawCircle(size*0.62, pupilY, 18)
	dc.Fill()

	// Mouth per pose.
	dc.SetLineWidth(14)
	dc.SetColor(color.White)
	switch tag {
	case types.PoseHappy:
		dc.DrawArc(size*0.5, size*0.58, 90, gg.Radians(20), gg.Radians(160))
		dc.Stroke()
	case types.PoseSad:
		dc.DrawArc(size*0.5, size*0.72, 90, gg.Radians(200), gg.Radians(340))
		dc.Stroke()
	case types.PoseExplaining:
		dc.DrawEllipse(size*0.5, size*0.63, 55, 35)
		dc.Stroke()
	case types.PoseThinking:
		dc.DrawLine(size*0.40, size*0.64, size*0.60, size*0.64)
		dc.Stroke()
	default:
		// Custom tags get the neutral mouth.
		dc.DrawLine(size*0.40, size*0.64, size*0.60, size*0.64)
		dc.Stroke()
	}

	// Name initial, when a font is available.
	if s.fontFace != nil {
		initial := mascotInitial(mascotName)
		dc.SetFontFace(s.fontFace)
		tw, th := dc.MeasureString(initial)
		dc.SetColor(color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xB0})
		dc.DrawString(initial, size*0.5-tw/2, size*0.86+th/4)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode mascot pose: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *mascotArtService) bodyColor(tag types.PoseTag) color.NRGBA {
	if c, ok := s.bodyColors[tag]; ok {
		return c
	}
	return color.NRGBA{R: 0x64, G: 0x74, B: 0x8B, A: 0xFF}
}

func mascotInitial(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "?"
	}
	return strings.ToUpper(name[:1])
}

func loadFontFace(fontPath string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}
