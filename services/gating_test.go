package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmms090191-rgb/duerp-sub001/models"
)

func TestIsCategoryReachable(t *testing.T) {
	cat := testCatalog()
	ungated := &cat.Categories[0] // cat_a
	gated := &cat.Categories[1]   // cat_b, gated by q_a_gate

	t.Run("ungated category is always reachable", func(t *testing.T) {
		assert.True(t, IsCategoryReachable(ungated, models.ResponseSet{}))
		assert.True(t, IsCategoryReachable(ungated, models.ResponseSet{
			"q_a_gate": answered("q_a_gate", models.RiskStatusUnmastered),
		}))
	})

	t.Run("gated category closed while gate unanswered", func(t *testing.T) {
		assert.False(t, IsCategoryReachable(gated, models.ResponseSet{}))
	})

	t.Run("gate affirmed opens the category", func(t *testing.T) {
		responses := models.ResponseSet{"q_a_gate": answered("q_a_gate", models.RiskStatusMastered)}
		assert.True(t, IsCategoryReachable(gated, responses))
	})

	t.Run("gate denied keeps the category closed", func(t *testing.T) {
		responses := models.ResponseSet{"q_a_gate": answered("q_a_gate", models.RiskStatusUnmastered)}
		assert.False(t, IsCategoryReachable(gated, responses))
	})
}

// Reachability must depend on the gate question's response only: mutating any
// other response never changes the result.
func TestIsCategoryReachableDeterminism(t *testing.T) {
	cat := testCatalog()
	gated := &cat.Categories[1]

	base := models.ResponseSet{"q_a_gate": answered("q_a_gate", models.RiskStatusMastered)}
	assert.True(t, IsCategoryReachable(gated, base))

	noisy := models.ResponseSet{
		"q_a_gate": answered("q_a_gate", models.RiskStatusMastered),
		"q_a1":     withAction(answered("q_a1", models.RiskStatusUnmastered), "act1", "fix it"),
		"q_b1":     answered("q_b1", models.RiskStatusNotApplicable),
		"q_c1":     answered("q_c1", models.RiskStatusMastered),
	}
	assert.True(t, IsCategoryReachable(gated, noisy))

	delete(noisy, "q_a_gate")
	assert.False(t, IsCategoryReachable(gated, noisy))
}

func TestNextReachableCategoryIndex(t *testing.T) {
	cat := testCatalog()

	t.Run("skips gated category when gate is denied", func(t *testing.T) {
		responses := models.ResponseSet{"q_a_gate": answered("q_a_gate", models.RiskStatusUnmastered)}
		assert.Equal(t, 2, NextReachableCategoryIndex(cat, 0, responses, 1))
	})

	t.Run("enters gated category when gate is affirmed", func(t *testing.T) {
		responses := models.ResponseSet{"q_a_gate": answered("q_a_gate", models.RiskStatusMastered)}
		assert.Equal(t, 1, NextReachableCategoryIndex(cat, 0, responses, 1))
	})

	t.Run("returns -1 past either end", func(t *testing.T) {
		assert.Equal(t, -1, NextReachableCategoryIndex(cat, 2, models.ResponseSet{}, 1))
		assert.Equal(t, -1, NextReachableCategoryIndex(cat, 0, models.ResponseSet{}, -1))
	})

	t.Run("backward scan skips unreachable categories", func(t *testing.T) {
		responses := models.ResponseSet{} // gate unanswered, cat_b closed
		assert.Equal(t, 0, NextReachableCategoryIndex(cat, 2, responses, -1))
	})

	t.Run("terminates when everything remaining is gated closed", func(t *testing.T) {
		allGated := &models.QuestionCatalog{
			SectorID: "gated",
			Categories: []models.Category{
				{ID: "open", Kind: models.CategoryPlainList, Questions: []models.Question{{ID: "g", Kind: models.QuestionGate}}},
				{ID: "c1", ParentGateQuestionID: "g", Kind: models.CategoryPlainList},
				{ID: "c2", ParentGateQuestionID: "g", Kind: models.CategoryPlainList},
				{ID: "c3", ParentGateQuestionID: "g", Kind: models.CategoryPlainList},
			},
		}
		assert.Equal(t, -1, NextReachableCategoryIndex(allGated, 0, models.ResponseSet{}, 1))
	})
}
