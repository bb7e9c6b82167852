package services

import "github.com/dmms090191-rgb/duerp-sub001/models"

// Completion engine: pure functions deriving per-question, per-category and
// sector-wide completion from the catalog plus a response snapshot. There is
// no internal state; everything is recomputed after each store mutation.

// IsQuestionAnswered reports whether a question counts as answered.
// Gate questions are answered once either branch is chosen. Standard
// questions are answered when the risk is mastered or not applicable; an
// unmastered risk only counts once at least one remediation action exists
// (an open risk without a plan is not resolved, not even on paper).
func IsQuestionAnswered(question *models.Question, response models.Response) bool {
	if question.IsGate() {
		return response.RiskStatus != models.RiskStatusUnset
	}
	switch response.RiskStatus {
	case models.RiskStatusMastered, models.RiskStatusNotApplicable:
		return true
	case models.RiskStatusUnmastered:
		return len(response.ActionPlan) > 0
	default:
		return false
	}
}

// IsQuestionIncomplete reports the "started but not finished" state: the risk
// is marked unmastered but no remediation action has been recorded yet.
func IsQuestionIncomplete(question *models.Question, response models.Response) bool {
	if question.IsGate() {
		return false
	}
	return response.RiskStatus == models.RiskStatusUnmastered && len(response.ActionPlan) == 0
}

// IsQuestionPartial reports whether the user has begun selecting measures
// without committing to a risk status yet.
func IsQuestionPartial(question *models.Question, response models.Response) bool {
	if question.IsGate() {
		return false
	}
	return response.RiskStatus == models.RiskStatusUnset &&
		(len(response.SelectedMeasureIDs) > 0 || len(response.CustomMeasures) > 0)
}

// IsCategoryCompleted reports whether every question in the category is
// answered. A category with no questions is vacuously completed.
func IsCategoryCompleted(category *models.Category, responses models.ResponseSet) bool {
	for i := range category.Questions {
		q := &category.Questions[i]
		if !IsQuestionAnswered(q, responses.Get(q.ID)) {
			return false
		}
	}
	return true
}

// FirstIncompleteCategoryIndex returns the index of the first reachable
// category that is not yet completed, scanning in catalog order. When every
// reachable category is completed it returns the last reachable one, so there
// is always an active category to display. An all-gated catalog (should not
// survive validation) falls back to index 0.
func FirstIncompleteCategoryIndex(catalog *models.QuestionCatalog, responses models.ResponseSet) int {
	lastReachable := -1
	for i := range catalog.Categories {
		c := &catalog.Categories[i]
		if !IsCategoryReachable(c, responses) {
			continue
		}
		if !IsCategoryCompleted(c, responses) {
			return i
		}
		lastReachable = i
	}
	if lastReachable >= 0 {
		return lastReachable
	}
	return 0
}

// hasRecordedMeasure reports whether the response carries at least one
// measure that actually exists: a selected id resolving against the
// question's catalog measures, or any custom measure. Dangling selected ids
// (catalog changed since the response was stored) count as absent.
func hasRecordedMeasure(question *models.Question, response models.Response) bool {
	if len(response.CustomMeasures) > 0 {
		return true
	}
	for _, id := range response.SelectedMeasureIDs {
		if _, ok := question.MeasureByID(id); ok {
			return true
		}
	}
	return false
}

// ComputeCategoryProgress classifies each answered question of the category
// into exactly one bucket. Unanswered questions are excluded from every
// bucket but counted in Total.
func ComputeCategoryProgress(category *models.Category, responses models.ResponseSet) models.CategoryProgress {
	progress := models.CategoryProgress{Total: len(category.Questions)}
	for i := range category.Questions {
		q := &category.Questions[i]
		resp := responses.Get(q.ID)
		if !IsQuestionAnswered(q, resp) {
			continue
		}
		switch resp.RiskStatus {
		case models.RiskStatusMastered:
			if hasRecordedMeasure(q, resp) {
				progress.MasteredWithMeasure++
			} else {
				progress.MasteredNoMeasure++
			}
		case models.RiskStatusUnmastered:
			progress.Unmastered++
		case models.RiskStatusNotApplicable:
			progress.NotApplicable++
		}
	}
	return progress
}
