package models

// CategoryProgress classifies the answered questions of a category into four
// exclusive buckets for progress bars and the compiled report. Unanswered
// questions belong to no bucket but still count toward Total.
type CategoryProgress struct {
	MasteredNoMeasure   int `json:"mastered_no_measure"`
	MasteredWithMeasure int `json:"mastered_with_measure"`
	Unmastered          int `json:"unmastered"`
	NotApplicable       int `json:"not_applicable"`
	Total               int `json:"total"`
}

// Answered returns the number of answered questions (the sum of all buckets).
func (p CategoryProgress) Answered() int {
	return p.MasteredNoMeasure + p.MasteredWithMeasure + p.Unmastered + p.NotApplicable
}

// Add merges another progress value into this one (used for sector-wide aggregation).
func (p *CategoryProgress) Add(other CategoryProgress) {
	p.MasteredNoMeasure += other.MasteredNoMeasure
	p.MasteredWithMeasure += other.MasteredWithMeasure
	p.Unmastered += other.Unmastered
	p.NotApplicable += other.NotApplicable
	p.Total += other.Total
}

// ReportEntry pairs one question with its recorded response.
// ResolvedMeasureTexts joins the selected catalog measures (resolved against
// the catalog, selection order preserved, dangling ids dropped) with the
// custom measure descriptions, in that order.
type ReportEntry struct {
	Question             Question `json:"question"`
	Response             Response `json:"response"`
	ResolvedMeasureTexts []string `json:"resolved_measure_texts"`
}

// ReportSection is the compiled output for one category.
// Skipped marks categories whose parent gate is denied or unanswered: their
// entries are still listed (recorded responses are preserved data) but they
// contribute nothing to the summary statistics.
type ReportSection struct {
	Category Category         `json:"category"`
	Skipped  bool             `json:"skipped"`
	Entries  []ReportEntry    `json:"entries"`
	Progress CategoryProgress `json:"progress"`
}

// ActionPlanRow is one row of the global remediation table: an action item
// annotated with where it came from. Rows appear in catalog traversal order
// (category order, then question order, then insertion order).
type ActionPlanRow struct {
	CategoryID    string       `json:"category_id"`
	CategoryLabel string       `json:"category_label"`
	QuestionID    string       `json:"question_id"`
	QuestionText  string       `json:"question_text"`
	Priority      RiskPriority `json:"priority"`
	Item          ActionItem   `json:"item"`
}

// SummaryStats aggregates progress across every reachable category.
type SummaryStats struct {
	Overall        CategoryProgress `json:"overall"`
	TotalAnswered  int              `json:"total_answered"`
	TotalQuestions int              `json:"total_questions"`
}

// ReportDocument is the structured, render-agnostic result of compiling all
// responses. It carries no timestamps and nothing random: compiling the same
// inputs twice yields identical documents. A render timestamp, if wanted,
// is the rendering collaborator's business.
type ReportDocument struct {
	ClientID       string          `json:"client_id"`
	SectorID       string          `json:"sector_id"`
	SectorLabel    string          `json:"sector_label"`
	GeneralRemarks string          `json:"general_remarks"`
	Sections       []ReportSection `json:"sections"`
	ActionPlan     []ActionPlanRow `json:"action_plan"`
	Stats          SummaryStats    `json:"stats"`
}
