package models

// QuestionKind classifies how a question is answered and evaluated.
type QuestionKind string

const (
	// QuestionStandard is a full risk-assessment question: risk status,
	// mitigation measures, priority and remediation actions.
	QuestionStandard QuestionKind = "standard"
	// QuestionGate is a binary yes/no question whose affirmative answer
	// unlocks dependent categories. Gate questions carry no measures.
	QuestionGate QuestionKind = "gate"
)

// CategoryKind classifies how a category is entered and displayed.
// It is computed once at catalog load time so that navigation logic can
// switch on a closed set instead of re-deriving intent from optional fields.
type CategoryKind string

const (
	CategoryPlainList     CategoryKind = "plain_list"      // questions only
	CategoryGateFirst     CategoryKind = "gate_first"      // first question is the category's own gate
	CategoryIntroThenList CategoryKind = "intro_then_list" // intro text shown before the questions
)

// Measure is a predefined mitigation action a client may mark as already in place.
type Measure struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

// Question is one entry of a sector catalog. Question definitions are static
// data: they are never stored in the database, so no GORM tags here.
type Question struct {
	ID              string       `json:"id" yaml:"id"`
	Text            string       `json:"text" yaml:"text"`
	DisplayNumber   string       `json:"display_number,omitempty" yaml:"display_number,omitempty"`
	Kind            QuestionKind `json:"kind" yaml:"kind,omitempty"`
	Measures        []Measure    `json:"measures,omitempty" yaml:"measures,omitempty"`
	InformationText string       `json:"information_text,omitempty" yaml:"information_text,omitempty"`
}

// IsGate reports whether the question is a binary gate question.
func (q *Question) IsGate() bool {
	return q.Kind == QuestionGate
}

// MeasureByID resolves a measure id against this question's catalog measures.
// Duplicate ids in the static data resolve to the first occurrence.
func (q *Question) MeasureByID(id string) (*Measure, bool) {
	for i := range q.Measures {
		if q.Measures[i].ID == id {
			return &q.Measures[i], true
		}
	}
	return nil, false
}

// Category groups related questions, optionally gated by a prior question's answer.
type Category struct {
	ID                   string       `json:"id" yaml:"id"`
	Label                string       `json:"label" yaml:"label"`
	DisplayNumber        string       `json:"display_number,omitempty" yaml:"display_number,omitempty"`
	DefaultDescription   string       `json:"default_description,omitempty" yaml:"default_description,omitempty"`
	ParentGateQuestionID string       `json:"parent_gate_question_id,omitempty" yaml:"parent_gate_question_id,omitempty"`
	Kind                 CategoryKind `json:"kind" yaml:"-"` // computed at load time, not part of the file format
	Questions            []Question   `json:"questions" yaml:"questions"`
}

// QuestionIDs returns the ids of all questions in the category, in order.
func (c *Category) QuestionIDs() []string {
	ids := make([]string, 0, len(c.Questions))
	for i := range c.Questions {
		ids = append(ids, c.Questions[i].ID)
	}
	return ids
}

// ContainsQuestion reports whether the given question id belongs to this category.
func (c *Category) ContainsQuestion(questionID string) bool {
	for i := range c.Questions {
		if c.Questions[i].ID == questionID {
			return true
		}
	}
	return false
}

// QuestionCatalog is the immutable, sector-specific questionnaire: an ordered
// sequence of categories, each holding ordered questions with their candidate
// mitigation measures. A catalog is built once at sector selection time and is
// shared read-only afterwards; all mutable state lives in the response store.
type QuestionCatalog struct {
	SectorID    string     `json:"sector_id" yaml:"sector_id"`
	SectorLabel string     `json:"sector_label" yaml:"sector_label"`
	Categories  []Category `json:"categories" yaml:"categories"`
}

// QuestionByID looks a question up anywhere in the catalog. Question ids are
// unique across the whole catalog (validated at load time), so the first match
// is the only match.
func (cat *QuestionCatalog) QuestionByID(id string) (*Question, bool) {
	for ci := range cat.Categories {
		c := &cat.Categories[ci]
		for qi := range c.Questions {
			if c.Questions[qi].ID == id {
				return &c.Questions[qi], true
			}
		}
	}
	return nil, false
}

// CategoryByID returns the category with the given id and its index.
func (cat *QuestionCatalog) CategoryByID(id string) (*Category, int, bool) {
	for i := range cat.Categories {
		if cat.Categories[i].ID == id {
			return &cat.Categories[i], i, true
		}
	}
	return nil, -1, false
}

// CategoryOfQuestion returns the category holding the given question id.
func (cat *QuestionCatalog) CategoryOfQuestion(questionID string) (*Category, bool) {
	for i := range cat.Categories {
		if cat.Categories[i].ContainsQuestion(questionID) {
			return &cat.Categories[i], true
		}
	}
	return nil, false
}

// TotalQuestions counts all questions across all categories.
func (cat *QuestionCatalog) TotalQuestions() int {
	n := 0
	for i := range cat.Categories {
		n += len(cat.Categories[i].Questions)
	}
	return n
}
