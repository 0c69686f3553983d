package packing

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/cursolab/cursolab-backend/internal/types"
)

func TestMascotPosePath(t *testing.T) {
	cases := []struct {
		name string
		tag  types.PoseTag
		want string
	}{
		{"Dino 2000!", types.PoseHappy, "mascot/Dino_2000_happy.png"},
		{"", types.PoseHappy, "mascot/mascot_happy.png"},
		{"!!!", types.PoseSad, "mascot/mascot_sad.png"},
		{"Léo", types.PoseThinking, "mascot/L_o_thinking.png"},
		{"Robo", types.PoseTag("custom_wave"), "mascot/Robo_custom_wave.png"},
	}
	for _, tc := range cases {
		if got := MascotPosePath(tc.name, tc.tag); got != tc.want {
			t.Errorf("MascotPosePath(%q, %q) = %q, want %q", tc.name, tc.tag, got, tc.want)
		}
	}
}

func testCourse() *types.Course {
	return &types.Course{
		ID: "course-1",
		Settings: types.CourseSettings{
			Name:       "Dinosaurs",
			MascotName: "Dino 2000!",
		},
		Modules: []*types.Module{
			{ID: "m1", Type: types.ModuleText, Title: "Intro", Text: &types.TextPayload{HTML: "<p>hi</p>"}},
			{ID: "m2", Type: types.ModuleVideo, Title: "Watch", Video: &types.VideoPayload{URL: "https://youtu.be/x", Source: "youtube"}},
			{ID: "m3", Type: types.ModuleQuiz, Title: "Check", Quiz: &types.QuizPayload{
				Questions: []types.Question{{ID: "q1", Prompt: "?", Options: []string{"a", "b"}, Answer: 1}},
			}},
		},
		Media: []*types.MediaAsset{
			{ID: "a1", Name: "pic.png", Kind: types.MediaImage, Path: "media/a1.png"},
		},
		Mascot: []*types.MascotPose{
			{Tag: types.PoseHappy, Path: "stale/old_happy.png"},
			{Tag: types.PoseSad, Path: ""},
		},
	}
}

func TestBuildDocumentNoFilter(t *testing.T) {
	course := testCourse()
	doc, err := BuildDocument(course, nil)
	if err != nil {
		t.Fatalf("BuildDocument: %v", err)
	}
	if len(doc.Modules) != 3 {
		t.Fatalf("expected all 3 modules, got %d", len(doc.Modules))
	}
	if doc.Media[0].Path != "media/a1.png" {
		t.Errorf("media path must stay as assigned, got %q", doc.Media[0].Path)
	}
	for _, p := range doc.Mascot {
		if !strings.HasPrefix(p.Path, "mascot/Dino_2000_") || !strings.HasSuffix(p.Path, ".png") {
			t.Errorf("mascot path not canonical: %q", p.Path)
		}
	}
}

func TestBuildDocumentFilter(t *testing.T) {
	course := testCourse()
	doc, err := BuildDocument(course, []string{"m2"})
	if err != nil {
		t.Fatalf("BuildDocument: %v", err)
	}
	if len(doc.Modules) != 1 || doc.Modules[0].ID != "m2" {
		t.Fatalf("expected exactly [m2], got %+v", doc.Modules)
	}
	if len(doc.Mascot) != 2 {
		t.Errorf("mascot poses must survive module filtering, got %d", len(doc.Mascot))
	}
	if len(doc.Media) != 1 {
		t.Errorf("media set must survive module filtering, got %d", len(doc.Media))
	}
}

func TestBuildDocumentFilterKeepsCourseOrder(t *testing.T) {
	course := testCourse()
	doc, err := BuildDocument(course, []string{"m3", "m1"})
	if err != nil {
		t.Fatalf("BuildDocument: %v", err)
	}
	if len(doc.Modules) != 2 || doc.Modules[0].ID != "m1" || doc.Modules[1].ID != "m3" {
		t.Fatalf("expected course order [m1 m3], got %+v", doc.Modules)
	}
}

func TestBuildDocumentUnknownFilterID(t *testing.T) {
	if _, err := BuildDocument(testCourse(), []string{"nope"}); err == nil {
		t.Fatal("expected error for unknown filter id")
	}
}

func TestBuildDocumentRejectsMalformedModule(t *testing.T) {
	course := testCourse()
	course.Modules = append(course.Modules, &types.Module{ID: "bad", Type: types.ModuleText})
	if _, err := BuildDocument(course, nil); err == nil {
		t.Fatal("expected error for module without payload")
	}
}

func TestBuildDocumentDoesNotMutateCourse(t *testing.T) {
	course := testCourse()
	course.Media[0].Content = types.PendingUpload{Data: []byte{1}}
	if _, err := BuildDocument(course, nil); err != nil {
		t.Fatalf("BuildDocument: %v", err)
	}
	if course.Mascot[0].Path != "stale/old_happy.png" {
		t.Error("BuildDocument mutated the input course mascot path")
	}
	if course.Media[0].Content == nil {
		t.Error("BuildDocument stripped content from the input course")
	}
}

func TestDocumentJSONHasNoContentState(t *testing.T) {
	course := testCourse()
	course.Media[0].Content = types.PendingUpload{Data: []byte("secret-bytes")}
	doc, err := BuildDocument(course, nil)
	if err != nil {
		t.Fatalf("BuildDocument: %v", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "secret-bytes") || strings.Contains(string(raw), "Content") {
		t.Errorf("document JSON leaks content state: %s", raw)
	}
}
