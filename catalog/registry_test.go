package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmms090191-rgb/duerp-sub001/models"
)

func validCatalog() *models.QuestionCatalog {
	return &models.QuestionCatalog{
		SectorID:    "test_sector",
		SectorLabel: "Test sector",
		Categories: []models.Category{
			{
				ID:    "cat_a",
				Label: "Category A",
				Questions: []models.Question{
					{ID: "q_a1", Text: "Question A1", Measures: []models.Measure{{ID: "m1", Text: "Measure one"}}},
					{ID: "q_gate", Text: "Gate?", Kind: models.QuestionGate},
				},
			},
			{
				ID:                   "cat_b",
				Label:                "Category B",
				ParentGateQuestionID: "q_gate",
				Questions: []models.Question{
					{ID: "q_b1", Text: "Question B1"},
				},
			},
		},
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid catalog passes", func(t *testing.T) {
		cat := validCatalog()
		finalize(cat)
		assert.NoError(t, Validate(cat))
	})

	t.Run("duplicate question id", func(t *testing.T) {
		cat := validCatalog()
		cat.Categories[1].Questions = append(cat.Categories[1].Questions, models.Question{ID: "q_a1", Text: "dup"})
		finalize(cat)
		err := Validate(cat)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate question id 'q_a1'")
	})

	t.Run("empty question id", func(t *testing.T) {
		cat := validCatalog()
		cat.Categories[0].Questions[0].ID = ""
		finalize(cat)
		assert.Error(t, Validate(cat))
	})

	t.Run("dangling gate reference", func(t *testing.T) {
		cat := validCatalog()
		cat.Categories[1].ParentGateQuestionID = "q_nowhere"
		finalize(cat)
		err := Validate(cat)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown question 'q_nowhere'")
	})

	t.Run("gate reference into the same category", func(t *testing.T) {
		cat := validCatalog()
		cat.Categories[1].Questions = append(cat.Categories[1].Questions, models.Question{ID: "q_b_gate", Kind: models.QuestionGate})
		cat.Categories[1].ParentGateQuestionID = "q_b_gate"
		finalize(cat)
		err := Validate(cat)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "its own question")
	})

	t.Run("gate reference to a non-gate question", func(t *testing.T) {
		cat := validCatalog()
		cat.Categories[1].ParentGateQuestionID = "q_a1"
		finalize(cat)
		err := Validate(cat)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a gate question")
	})

	t.Run("gate question with measures", func(t *testing.T) {
		cat := validCatalog()
		cat.Categories[0].Questions[1].Measures = []models.Measure{{ID: "m_bad", Text: "nope"}}
		finalize(cat)
		err := Validate(cat)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must not carry measures")
	})

	t.Run("catalog without categories", func(t *testing.T) {
		cat := &models.QuestionCatalog{SectorID: "empty"}
		finalize(cat)
		err := Validate(cat)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no categories")
	})

	t.Run("duplicate measure ids are tolerated", func(t *testing.T) {
		cat := validCatalog()
		cat.Categories[0].Questions[0].Measures = append(cat.Categories[0].Questions[0].Measures, models.Measure{ID: "m1", Text: "Measure one again"})
		finalize(cat)
		assert.NoError(t, Validate(cat))
	})
}

func TestFinalizeKinds(t *testing.T) {
	cat := &models.QuestionCatalog{
		SectorID: "kinds",
		Categories: []models.Category{
			{ID: "c_plain", Questions: []models.Question{{ID: "q1"}}},
			{ID: "c_gatefirst", Questions: []models.Question{{ID: "q_g", Kind: models.QuestionGate}, {ID: "q2"}}},
			{ID: "c_intro", DefaultDescription: "Some context first.", Questions: []models.Question{{ID: "q3"}}},
			{ID: "c_empty", DefaultDescription: "No questions here."},
		},
	}
	finalize(cat)

	assert.Equal(t, models.CategoryPlainList, cat.Categories[0].Kind)
	assert.Equal(t, models.CategoryGateFirst, cat.Categories[1].Kind)
	assert.Equal(t, models.CategoryIntroThenList, cat.Categories[2].Kind)
	assert.Equal(t, models.CategoryPlainList, cat.Categories[3].Kind)

	t.Run("empty question kinds default to standard", func(t *testing.T) {
		assert.Equal(t, models.QuestionStandard, cat.Categories[0].Questions[0].Kind)
		assert.Equal(t, models.QuestionGate, cat.Categories[1].Questions[0].Kind)
	})
}

func TestDefaultCatalogIsValid(t *testing.T) {
	cat := DefaultCatalog()
	finalize(cat)
	assert.NoError(t, Validate(cat))
	assert.Equal(t, DefaultSectorID, cat.SectorID)
	assert.Greater(t, cat.TotalQuestions(), 0)
}

const sectorYAML = `sector_id: bakery
sector_label: Bakery
categories:
  - id: cat_ovens
    label: Ovens and heat
    default_description: Heat sources are the main hazard in a bakery.
    questions:
      - id: q_oven_guard
        text: Are oven doors fitted with heat guards?
        measures:
          - id: m_guard
            text: Install insulated door guards
  - id: cat_flour
    label: Flour dust
    questions:
      - id: q_uses_silo
        text: Does the bakery use a flour silo?
        kind: gate
  - id: cat_silo
    label: Silo handling
    parent_gate_question_id: q_uses_silo
    questions:
      - id: q_silo_vent
        text: Is the silo vented to the outside?
`

func writeCatalogFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestNewRegistry(t *testing.T) {
	t.Run("empty dir keeps only the default catalog", func(t *testing.T) {
		r, err := NewRegistry("", "")
		require.NoError(t, err)
		assert.Equal(t, []string{DefaultSectorID}, r.Sectors())
	})

	t.Run("missing dir is not an error", func(t *testing.T) {
		r, err := NewRegistry(filepath.Join(t.TempDir(), "does_not_exist"), "")
		require.NoError(t, err)
		assert.True(t, r.Has(DefaultSectorID))
	})

	t.Run("loads sector files from the dir", func(t *testing.T) {
		dir := t.TempDir()
		writeCatalogFile(t, dir, "bakery.yaml", sectorYAML)
		writeCatalogFile(t, dir, "notes.txt", "not a catalog")

		r, err := NewRegistry(dir, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"bakery", DefaultSectorID}, r.Sectors())

		cat := r.Get("bakery")
		require.Equal(t, "bakery", cat.SectorID)
		assert.Equal(t, 3, cat.TotalQuestions())
		assert.Equal(t, models.CategoryIntroThenList, cat.Categories[0].Kind)
		assert.Equal(t, models.CategoryGateFirst, cat.Categories[1].Kind)

		gate, ok := cat.QuestionByID("q_uses_silo")
		require.True(t, ok)
		assert.True(t, gate.IsGate())
	})

	t.Run("invalid file is fatal", func(t *testing.T) {
		dir := t.TempDir()
		writeCatalogFile(t, dir, "broken.yaml", "sector_id: broken\ncategories:\n  - id: c1\n    questions:\n      - id: q1\n      - id: q1\n")
		_, err := NewRegistry(dir, "")
		assert.Error(t, err)
	})

	t.Run("file without categories is fatal", func(t *testing.T) {
		dir := t.TempDir()
		writeCatalogFile(t, dir, "empty.yaml", "sector_id: empty\nsector_label: Empty\ncategories: []\n")
		_, err := NewRegistry(dir, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no categories")
	})

	t.Run("file without sector_id is fatal", func(t *testing.T) {
		dir := t.TempDir()
		writeCatalogFile(t, dir, "anon.yaml", "sector_label: Anonymous\ncategories: []\n")
		_, err := NewRegistry(dir, "")
		assert.Error(t, err)
	})

	t.Run("configured default sector becomes the fallback", func(t *testing.T) {
		dir := t.TempDir()
		writeCatalogFile(t, dir, "bakery.yaml", sectorYAML)

		r, err := NewRegistry(dir, "bakery")
		require.NoError(t, err)
		assert.Equal(t, "bakery", r.Get("no_such_sector").SectorID)
	})

	t.Run("default sector without a catalog is fatal", func(t *testing.T) {
		_, err := NewRegistry("", "no_such_sector")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "default sector 'no_such_sector'")
	})

	t.Run("redefining a sector is fatal", func(t *testing.T) {
		dir := t.TempDir()
		writeCatalogFile(t, dir, "a.yaml", sectorYAML)
		writeCatalogFile(t, dir, "b.yaml", sectorYAML)
		_, err := NewRegistry(dir, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redefines sector 'bakery'")
	})
}

func TestRegistryGetFallback(t *testing.T) {
	r, err := NewRegistry("", "")
	require.NoError(t, err)

	assert.Equal(t, DefaultSectorID, r.Get("no_such_sector").SectorID)
	assert.Equal(t, DefaultSectorID, r.Get("").SectorID)
	assert.False(t, r.Has("no_such_sector"))
}
