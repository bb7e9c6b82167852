package catalog

import (
	"fmt"
	"log"

	"github.com/dmms090191-rgb/duerp-sub001/models"
)

// ValidationError describes a catalog integrity problem found at load time.
// Gating and report compilation rely on globally unique question ids and on
// gate references resolving to real gate questions, so a broken catalog is
// rejected up front instead of producing silently wrong traversal at runtime.
type ValidationError struct {
	SectorID string
	Problem  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid catalog for sector '%s': %s", e.SectorID, e.Problem)
}

// Validate checks catalog integrity and returns the first problem found:
//   - a catalog with no categories at all
//   - duplicate question id anywhere in the catalog
//   - ParentGateQuestionID referencing a nonexistent question
//   - ParentGateQuestionID referencing a question inside the same category
//   - ParentGateQuestionID referencing a non-gate question
//   - a gate question carrying measures
//
// Duplicate measure ids within one question are a known data-quality issue in
// the static catalogs (copy-paste artifacts); they are logged as warnings and
// tolerated, since measure selection uses set semantics anyway.
func Validate(cat *models.QuestionCatalog) error {
	if len(cat.Categories) == 0 {
		return &ValidationError{SectorID: cat.SectorID, Problem: "catalog has no categories"}
	}

	seen := make(map[string]string) // question id -> category id

	for ci := range cat.Categories {
		c := &cat.Categories[ci]
		for qi := range c.Questions {
			q := &c.Questions[qi]
			if q.ID == "" {
				return &ValidationError{SectorID: cat.SectorID, Problem: fmt.Sprintf("category '%s' has a question with an empty id", c.ID)}
			}
			if prev, dup := seen[q.ID]; dup {
				return &ValidationError{SectorID: cat.SectorID, Problem: fmt.Sprintf("duplicate question id '%s' (categories '%s' and '%s')", q.ID, prev, c.ID)}
			}
			seen[q.ID] = c.ID

			if q.IsGate() && len(q.Measures) > 0 {
				return &ValidationError{SectorID: cat.SectorID, Problem: fmt.Sprintf("gate question '%s' must not carry measures", q.ID)}
			}

			measureIDs := make(map[string]struct{}, len(q.Measures))
			for mi := range q.Measures {
				m := &q.Measures[mi]
				if _, dup := measureIDs[m.ID]; dup {
					log.Printf("WARN: [Catalog] Sector '%s', question '%s': duplicate measure id '%s' in static data. Tolerated (selection is set-based), but the catalog data should be cleaned up.", cat.SectorID, q.ID, m.ID)
					continue
				}
				measureIDs[m.ID] = struct{}{}
			}
		}
	}

	for ci := range cat.Categories {
		c := &cat.Categories[ci]
		if c.ParentGateQuestionID == "" {
			continue
		}
		gateCategory, ok := seen[c.ParentGateQuestionID]
		if !ok {
			return &ValidationError{SectorID: cat.SectorID, Problem: fmt.Sprintf("category '%s' is gated by unknown question '%s'", c.ID, c.ParentGateQuestionID)}
		}
		if gateCategory == c.ID {
			return &ValidationError{SectorID: cat.SectorID, Problem: fmt.Sprintf("category '%s' is gated by its own question '%s'", c.ID, c.ParentGateQuestionID)}
		}
		gateQuestion, _ := cat.QuestionByID(c.ParentGateQuestionID)
		if !gateQuestion.IsGate() {
			return &ValidationError{SectorID: cat.SectorID, Problem: fmt.Sprintf("category '%s' is gated by question '%s', which is not a gate question", c.ID, c.ParentGateQuestionID)}
		}
	}

	return nil
}

// finalize normalizes a freshly loaded catalog in place: empty question kinds
// default to standard, and each category gets its CategoryKind computed once
// so navigation can switch on a closed set.
func finalize(cat *models.QuestionCatalog) {
	for ci := range cat.Categories {
		c := &cat.Categories[ci]
		for qi := range c.Questions {
			if c.Questions[qi].Kind == "" {
				c.Questions[qi].Kind = models.QuestionStandard
			}
		}
		c.Kind = categoryKind(c)
	}
}

func categoryKind(c *models.Category) models.CategoryKind {
	if len(c.Questions) > 0 && c.Questions[0].IsGate() {
		return models.CategoryGateFirst
	}
	if c.DefaultDescription != "" && len(c.Questions) > 0 {
		return models.CategoryIntroThenList
	}
	return models.CategoryPlainList
}
