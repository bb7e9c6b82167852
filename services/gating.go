package services

import "github.com/dmms090191-rgb/duerp-sub001/models"

// Gating rules: pure functions deciding which categories are reachable given
// the current responses. A category gated by a question is reachable only
// while that gate is answered affirmatively (RiskStatusMastered); everything
// else about the response set is irrelevant to reachability.

// IsCategoryReachable reports whether the category can be visited.
// A category without a parent gate is always reachable. A gated category is
// reachable iff the gate question is answered "yes"; an unanswered gate keeps
// its children closed.
func IsCategoryReachable(category *models.Category, responses models.ResponseSet) bool {
	if category.ParentGateQuestionID == "" {
		return true
	}
	gate, ok := responses[category.ParentGateQuestionID]
	if !ok {
		return false
	}
	return gate.RiskStatus == models.RiskStatusMastered
}

// NextReachableCategoryIndex scans from fromIndex (exclusive) in the given
// direction (+1 or -1) and returns the index of the next reachable category,
// or -1 when the scan runs off either end. The scan is a single bounded pass,
// so it terminates even when every remaining category is gated closed.
func NextReachableCategoryIndex(catalog *models.QuestionCatalog, fromIndex int, responses models.ResponseSet, direction int) int {
	if direction >= 0 {
		direction = 1
	} else {
		direction = -1
	}
	for i := fromIndex + direction; i >= 0 && i < len(catalog.Categories); i += direction {
		if IsCategoryReachable(&catalog.Categories[i], responses) {
			return i
		}
	}
	return -1
}
