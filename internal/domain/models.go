package domain

import (
	"encoding/json"
	"time"
)

// GenerationKind names one kind of study content derived from a document.
type GenerationKind string

const (
	KindFlashcards GenerationKind = "flashcards"
	KindMindMap    GenerationKind = "mindmap"
	KindQuiz       GenerationKind = "quiz"
	KindVisualAid  GenerationKind = "visualaid"
	KindSummary    GenerationKind = "summary"
)

// Kinds lists every generation kind in display order.
var Kinds = []GenerationKind{KindFlashcards, KindMindMap, KindQuiz, KindVisualAid, KindSummary}

// Valid reports whether k is a known generation kind.
func (k GenerationKind) Valid() bool {
	switch k {
	case KindFlashcards, KindMindMap, KindQuiz, KindVisualAid, KindSummary:
		return true
	}
	return false
}

// Counted reports whether the kind takes an item count.
func (k GenerationKind) Counted() bool {
	return k == KindFlashcards || k == KindQuiz
}

// View is the screen a session currently shows.
type View string

const (
	ViewUpload     View = "upload"
	ViewGeneration View = "generation"
	ViewAnalytics  View = "analytics"
)

func (v View) Valid() bool {
	return v == ViewUpload || v == ViewGeneration || v == ViewAnalytics
}

// Theme is the persisted color preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Flashcard is a single question/answer pair.
type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// MindMapNode is a node of the generated topic tree.
type MindMapNode struct {
	Name     string        `json:"name"`
	Children []MindMapNode `json:"children,omitempty"`
}

// QuizQuestion is a multiple choice question; CorrectAnswer is one of Options.
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// Dataset is one bar series of a chart.
type Dataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

// ChartData backs the bar-chart visual aid.
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Content is the output of one generation step. Exactly one field is set,
// matching Kind.
type Content struct {
	Kind       GenerationKind `json:"kind"`
	Flashcards []Flashcard    `json:"flashcards,omitempty"`
	MindMap    *MindMapNode   `json:"mindMap,omitempty"`
	Quiz       []QuizQuestion `json:"quiz,omitempty"`
	VisualAid  *ChartData     `json:"visualAid,omitempty"`
	Summary    string         `json:"summary,omitempty"`
}

// StudySet is one processed document and everything generated from it.
type StudySet struct {
	ID         string         `json:"id"`
	FileName   string         `json:"fileName"`
	CreatedAt  time.Time      `json:"-"`
	Flashcards []Flashcard    `json:"flashcards,omitempty"`
	MindMap    *MindMapNode   `json:"mindMap,omitempty"`
	Quiz       []QuizQuestion `json:"quiz,omitempty"`
	VisualAid  *ChartData     `json:"visualAid,omitempty"`
	Summary    *string        `json:"summary,omitempty"`
	QuizScore  *int           `json:"quizScore,omitempty"`
}

// studySetJSON carries createdAt as Unix milliseconds.
type studySetJSON struct {
	alias
	CreatedAt int64 `json:"createdAt"`
}

type alias StudySet

func (s StudySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(studySetJSON{alias: alias(s), CreatedAt: s.CreatedAt.UnixMilli()})
}

func (s *StudySet) UnmarshalJSON(data []byte) error {
	var raw studySetJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = StudySet(raw.alias)
	s.CreatedAt = time.UnixMilli(raw.CreatedAt)
	return nil
}

// Apply merges generated content into the set, replacing any earlier value of
// the same kind.
func (s *StudySet) Apply(c Content) {
	switch c.Kind {
	case KindFlashcards:
		s.Flashcards = c.Flashcards
	case KindMindMap:
		s.MindMap = c.MindMap
	case KindQuiz:
		s.Quiz = c.Quiz
	case KindVisualAid:
		s.VisualAid = c.VisualAid
	case KindSummary:
		summary := c.Summary
		s.Summary = &summary
	}
}

// Clone returns a deep copy so callers cannot mutate session state.
func (s StudySet) Clone() StudySet {
	out := s
	if s.Flashcards != nil {
		out.Flashcards = append([]Flashcard(nil), s.Flashcards...)
	}
	if s.MindMap != nil {
		node := s.MindMap.clone()
		out.MindMap = &node
	}
	if s.Quiz != nil {
		out.Quiz = make([]QuizQuestion, len(s.Quiz))
		for i, q := range s.Quiz {
			q.Options = append([]string(nil), q.Options...)
			out.Quiz[i] = q
		}
	}
	if s.VisualAid != nil {
		chart := ChartData{Labels: append([]string(nil), s.VisualAid.Labels...)}
		for _, ds := range s.VisualAid.Datasets {
			chart.Datasets = append(chart.Datasets, Dataset{Label: ds.Label, Data: append([]float64(nil), ds.Data...)})
		}
		out.VisualAid = &chart
	}
	if s.Summary != nil {
		summary := *s.Summary
		out.Summary = &summary
	}
	if s.QuizScore != nil {
		score := *s.QuizScore
		out.QuizScore = &score
	}
	return out
}

func (n MindMapNode) clone() MindMapNode {
	out := MindMapNode{Name: n.Name}
	for _, child := range n.Children {
		out.Children = append(out.Children, child.clone())
	}
	return out
}
