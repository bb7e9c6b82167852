package services

import "github.com/dmms090191-rgb/duerp-sub001/models"

// testCatalog builds the canonical test sector:
//
//	cat_a  (plain)            q_a1 (standard, measures m1/m2), q_a_gate (gate, last)
//	cat_b  (gated by q_a_gate) q_b1 (standard, measure m_b1)
//	cat_c  (plain)            q_c1 (standard, no measures)
//
// Category kinds are set the way the catalog loader would compute them.
func testCatalog() *models.QuestionCatalog {
	return &models.QuestionCatalog{
		SectorID:    "test",
		SectorLabel: "Test sector",
		Categories: []models.Category{
			{
				ID:    "cat_a",
				Label: "Category A",
				Kind:  models.CategoryPlainList,
				Questions: []models.Question{
					{
						ID:   "q_a1",
						Text: "First standard question",
						Kind: models.QuestionStandard,
						Measures: []models.Measure{
							{ID: "m1", Text: "Measure one"},
							{ID: "m2", Text: "Measure two"},
						},
					},
					{
						ID:   "q_a_gate",
						Text: "Does this activity apply to you?",
						Kind: models.QuestionGate,
					},
				},
			},
			{
				ID:                   "cat_b",
				Label:                "Category B",
				Kind:                 models.CategoryPlainList,
				ParentGateQuestionID: "q_a_gate",
				Questions: []models.Question{
					{
						ID:       "q_b1",
						Text:     "Gated question",
						Kind:     models.QuestionStandard,
						Measures: []models.Measure{{ID: "m_b1", Text: "Measure B1"}},
					},
				},
			},
			{
				ID:    "cat_c",
				Label: "Category C",
				Kind:  models.CategoryPlainList,
				Questions: []models.Question{
					{ID: "q_c1", Text: "Final question", Kind: models.QuestionStandard},
				},
			},
		},
	}
}

// introCatalog prepends an intro-then-list category and a gate-first category
// for navigator entry-mode tests.
func introCatalog() *models.QuestionCatalog {
	return &models.QuestionCatalog{
		SectorID: "intro_test",
		Categories: []models.Category{
			{
				ID:                 "cat_intro",
				Label:              "Intro category",
				Kind:               models.CategoryIntroThenList,
				DefaultDescription: "Read this before answering.",
				Questions: []models.Question{
					{ID: "q_i1", Text: "Intro question one", Kind: models.QuestionStandard},
					{ID: "q_i2", Text: "Intro question two", Kind: models.QuestionStandard},
				},
			},
			{
				ID:    "cat_gatefirst",
				Label: "Gate-first category",
				Kind:  models.CategoryGateFirst,
				Questions: []models.Question{
					{ID: "q_g", Text: "Does this section apply?", Kind: models.QuestionGate},
					{ID: "q_g1", Text: "Dependent question", Kind: models.QuestionStandard},
				},
			},
			{
				ID:        "cat_plain",
				Label:     "Plain category",
				Kind:      models.CategoryPlainList,
				Questions: []models.Question{{ID: "q_p1", Text: "Plain question", Kind: models.QuestionStandard}},
			},
		},
	}
}

// answered returns a response with the given status and no other data.
func answered(qid string, status models.RiskStatus) models.Response {
	resp := models.EmptyResponse(qid)
	resp.RiskStatus = status
	return resp
}

// withAction adds one action item to a response.
func withAction(resp models.Response, id, description string) models.Response {
	resp.ActionPlan = append(resp.ActionPlan, models.ActionItem{ID: id, Description: description})
	return resp
}
