package services

import "github.com/dmms090191-rgb/duerp-sub001/models"

// Report compilation: a pure function from (catalog, responses, remarks) to
// the structured report document consumed by the rendering collaborator
// (PDF/HTML generation is outside this package). Identical inputs produce
// identical documents; nothing here reads the clock or anything random.

// CompileReport builds the full report document: one section per category in
// catalog order, the flattened action-plan table in traversal order, and the
// aggregated summary statistics.
func CompileReport(catalog *models.QuestionCatalog, responses models.ResponseSet, clientID, generalRemarks string) *models.ReportDocument {
	doc := &models.ReportDocument{
		ClientID:       clientID,
		SectorID:       catalog.SectorID,
		SectorLabel:    catalog.SectorLabel,
		GeneralRemarks: generalRemarks,
		Sections:       make([]models.ReportSection, 0, len(catalog.Categories)),
		ActionPlan:     []models.ActionPlanRow{},
	}

	for ci := range catalog.Categories {
		category := &catalog.Categories[ci]
		reachable := IsCategoryReachable(category, responses)

		section := models.ReportSection{
			Category: *category,
			Skipped:  !reachable,
			Entries:  make([]models.ReportEntry, 0, len(category.Questions)),
		}
		for qi := range category.Questions {
			question := &category.Questions[qi]
			resp := responses.Get(question.ID)
			section.Entries = append(section.Entries, models.ReportEntry{
				Question:             *question,
				Response:             resp,
				ResolvedMeasureTexts: ResolveMeasureTexts(question, resp),
			})
		}

		// Gated-out categories keep their recorded entries (the data is
		// preserved, never silently cleared) but count for nothing: no
		// progress, no action rows, no share of the summary totals.
		if reachable {
			section.Progress = ComputeCategoryProgress(category, responses)
			for qi := range category.Questions {
				question := &category.Questions[qi]
				resp := responses.Get(question.ID)
				for _, item := range resp.ActionPlan {
					doc.ActionPlan = append(doc.ActionPlan, models.ActionPlanRow{
						CategoryID:    category.ID,
						CategoryLabel: category.Label,
						QuestionID:    question.ID,
						QuestionText:  question.Text,
						Priority:      resp.RiskPriority,
						Item:          item,
					})
				}
			}
			doc.Stats.Overall.Add(section.Progress)
		}
		doc.Sections = append(doc.Sections, section)
	}

	doc.Stats.TotalAnswered = doc.Stats.Overall.Answered()
	doc.Stats.TotalQuestions = doc.Stats.Overall.Total
	return doc
}

// ComputeSummaryStats aggregates progress across every reachable category,
// for progress displays outside the report.
func ComputeSummaryStats(catalog *models.QuestionCatalog, responses models.ResponseSet) models.SummaryStats {
	var stats models.SummaryStats
	for ci := range catalog.Categories {
		category := &catalog.Categories[ci]
		if !IsCategoryReachable(category, responses) {
			continue
		}
		stats.Overall.Add(ComputeCategoryProgress(category, responses))
	}
	stats.TotalAnswered = stats.Overall.Answered()
	stats.TotalQuestions = stats.Overall.Total
	return stats
}

// ResolveMeasureTexts joins the selected catalog measures with the custom
// measure descriptions: selection order first, then custom order. A selected
// id that no longer resolves against the catalog (the catalog was updated
// after the response was recorded) is silently dropped rather than failing
// report generation.
func ResolveMeasureTexts(question *models.Question, response models.Response) []string {
	texts := make([]string, 0, len(response.SelectedMeasureIDs)+len(response.CustomMeasures))
	for _, id := range response.SelectedMeasureIDs {
		if measure, ok := question.MeasureByID(id); ok {
			texts = append(texts, measure.Text)
		}
	}
	for _, custom := range response.CustomMeasures {
		texts = append(texts, custom.Description)
	}
	return texts
}
