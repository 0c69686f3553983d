package types

import "fmt"

// ModuleType discriminates the module payload variants. Every consumer
// (serializer, renderer, editor) switches exhaustively over these values.
type ModuleType string

const (
	ModuleText       ModuleType = "text"
	ModuleVideo      ModuleType = "video"
	ModuleQuiz       ModuleType = "quiz"
	ModuleCards      ModuleType = "cards"
	ModuleTimeline   ModuleType = "timeline"
	ModuleExperiment ModuleType = "experiment"
)

// Module is one learning unit within a course. Exactly one payload field is
// set, matching Type. IDs are assigned at creation and never reused.
type Module struct {
	ID    string     `json:"id"`
	Type  ModuleType `json:"type"`
	Title string     `json:"title"`

	Text       *TextPayload       `json:"text,omitempty"`
	Video      *VideoPayload      `json:"video,omitempty"`
	Quiz       *QuizPayload       `json:"quiz,omitempty"`
	Cards      *CardsPayload      `json:"cards,omitempty"`
	Timeline   *TimelinePayload   `json:"timeline,omitempty"`
	Experiment *ExperimentPayload `json:"experiment,omitempty"`
}

type TextPayload struct {
	HTML string `json:"html"`
}

type VideoPayload struct {
	URL    string `json:"url"`
	Source string `json:"source"` // youtube|vimeo|file
}

type QuizPayload struct {
	Questions []Question `json:"questions"`
}

type Question struct {
	ID          string   `json:"id"`
	Prompt      string   `json:"prompt"`
	Options     []string `json:"options"`
	Answer      int      `json:"answer"`
	Explanation string   `json:"explanation,omitempty"`
}

type CardsPayload struct {
	Cards []Card `json:"cards"`
}

type Card struct {
	ID    string `json:"id"`
	Front string `json:"front"`
	Back  string `json:"back"`
}

type TimelinePayload struct {
	Events []TimelineEvent `json:"events"`
}

type TimelineEvent struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Title string `json:"title"`
	Body  string `json:"body,omitempty"`
}

type ExperimentPayload struct {
	Goal      string   `json:"goal"`
	Materials []string `json:"materials,omitempty"`
	StepsHTML string   `json:"steps_html"`
}

// Clone returns a deep copy of the module and its payload.
func (m *Module) Clone() *Module {
	if m == nil {
		return nil
	}
	cp := *m
	if m.Text != nil {
		t := *m.Text
		cp.Text = &t
	}
	if m.Video != nil {
		v := *m.Video
		cp.Video = &v
	}
	if m.Quiz != nil {
		q := QuizPayload{Questions: append([]Question(nil), m.Quiz.Questions...)}
		cp.Quiz = &q
	}
	if m.Cards != nil {
		cd := CardsPayload{Cards: append([]Card(nil), m.Cards.Cards...)}
		cp.Cards = &cd
	}
	if m.Timeline != nil {
		tl := TimelinePayload{Events: append([]TimelineEvent(nil), m.Timeline.Events...)}
		cp.Timeline = &tl
	}
	if m.Experiment != nil {
		e := *m.Experiment
		e.Materials = append([]string(nil), m.Experiment.Materials...)
		cp.Experiment = &e
	}
	return &cp
}

// Validate checks that the module carries exactly the payload its type
// declares.
func (m *Module) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("module missing id")
	}
	var want any
	switch m.Type {
	case ModuleText:
		want = m.Text
	case ModuleVideo:
		want = m.Video
	case ModuleQuiz:
		want = m.Quiz
	case ModuleCards:
		want = m.Cards
	case ModuleTimeline:
		want = m.Timeline
	case ModuleExperiment:
		want = m.Experiment
	default:
		return fmt.Errorf("module %s: unknown type %q", m.ID, m.Type)
	}
	if isNilPayload(want) {
		return fmt.Errorf("module %s: type %q has no payload", m.ID, m.Type)
	}
	if n := m.payloadCount(); n != 1 {
		return fmt.Errorf("module %s: expected exactly one payload, got %d", m.ID, n)
	}
	return nil
}

func (m *Module) payloadCount() int {
	n := 0
	if m.Text != nil {
		n++
	}
	if m.Video != nil {
		n++
	}
	if m.Quiz != nil {
		n++
	}
	if m.Cards != nil {
		n++
	}
	if m.Timeline != nil {
		n++
	}
	if m.Experiment != nil {
		n++
	}
	return n
}

func isNilPayload(v any) bool {
	switch p := v.(type) {
	case *TextPayload:
		return p == nil
	case *VideoPayload:
		return p == nil
	case *QuizPayload:
		return p == nil
	case *CardsPayload:
		return p == nil
	case *TimelinePayload:
		return p == nil
	case *ExperimentPayload:
		return p == nil
	}
	return v == nil
}
