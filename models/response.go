package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// RiskStatus is the per-question classification of the associated risk.
// The zero value means the question has not been answered yet.
// For gate questions only Mastered ("yes") and Unmastered ("no") are used.
type RiskStatus string

const (
	RiskStatusUnset         RiskStatus = ""
	RiskStatusMastered      RiskStatus = "mastered"
	RiskStatusUnmastered    RiskStatus = "unmastered"
	RiskStatusNotApplicable RiskStatus = "not_applicable"
)

// IsValid reports whether the status is one of the known values.
func (s RiskStatus) IsValid() bool {
	switch s {
	case RiskStatusUnset, RiskStatusMastered, RiskStatusUnmastered, RiskStatusNotApplicable:
		return true
	}
	return false
}

// RiskPriority ranks an identified risk for remediation planning.
type RiskPriority string

const (
	RiskPriorityUnset  RiskPriority = ""
	RiskPriorityLow    RiskPriority = "low"
	RiskPriorityMedium RiskPriority = "medium"
	RiskPriorityHigh   RiskPriority = "high"
)

// IsValid reports whether the priority is one of the known values.
func (p RiskPriority) IsValid() bool {
	switch p {
	case RiskPriorityUnset, RiskPriorityLow, RiskPriorityMedium, RiskPriorityHigh:
		return true
	}
	return false
}

// CustomMeasure is a free-text mitigation measure entered by the client,
// as opposed to one selected from the catalog.
type CustomMeasure struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// ActionItem is a remediation task recorded against an unmastered risk.
type ActionItem struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	Responsible string     `json:"responsible"`
	Budget      string     `json:"budget"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
}

// Response is the recorded state for one question within a (client, sector)
// scope. For gate questions only RiskStatus is meaningful (Mastered = "yes",
// Unmastered = "no"); every other field stays empty.
type Response struct {
	QuestionID         string          `json:"question_id"`
	RiskStatus         RiskStatus      `json:"risk_status"`
	RiskPriority       RiskPriority    `json:"risk_priority"`
	SelectedMeasureIDs []string        `json:"selected_measure_ids"`
	CustomMeasures     []CustomMeasure `json:"custom_measures"`
	ActionPlan         []ActionItem    `json:"action_plan"`
	Remarks            string          `json:"remarks"`
}

// EmptyResponse returns the canonical empty response for a question. The
// response store hands this out for unknown ids so callers never need nil
// checks.
func EmptyResponse(questionID string) Response {
	return Response{
		QuestionID:         questionID,
		SelectedMeasureIDs: []string{},
		CustomMeasures:     []CustomMeasure{},
		ActionPlan:         []ActionItem{},
	}
}

// Clone returns a deep copy so that callers can hand responses across
// goroutine or snapshot boundaries without sharing slices.
func (r Response) Clone() Response {
	out := r
	out.SelectedMeasureIDs = append([]string{}, r.SelectedMeasureIDs...)
	out.CustomMeasures = append([]CustomMeasure{}, r.CustomMeasures...)
	out.ActionPlan = append([]ActionItem{}, r.ActionPlan...)
	return out
}

// Normalize returns a canonical form: nil collections become empty ones and
// SelectedMeasureIDs gets set semantics (duplicates removed, first occurrence
// wins, order otherwise preserved). The question catalogs are known to contain
// the occasional duplicated measure id, so dedup here instead of erroring.
func (r Response) Normalize() Response {
	out := r.Clone()
	if len(out.SelectedMeasureIDs) > 1 {
		seen := make(map[string]struct{}, len(out.SelectedMeasureIDs))
		deduped := out.SelectedMeasureIDs[:0]
		for _, id := range out.SelectedMeasureIDs {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			deduped = append(deduped, id)
		}
		out.SelectedMeasureIDs = deduped
	}
	return out
}

// HasMeasureSelected reports whether the given catalog measure id is selected.
func (r Response) HasMeasureSelected(measureID string) bool {
	for _, id := range r.SelectedMeasureIDs {
		if id == measureID {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the response carries no recorded data at all.
func (r Response) IsEmpty() bool {
	return r.RiskStatus == RiskStatusUnset &&
		r.RiskPriority == RiskPriorityUnset &&
		len(r.SelectedMeasureIDs) == 0 &&
		len(r.CustomMeasures) == 0 &&
		len(r.ActionPlan) == 0 &&
		r.Remarks == ""
}

// ResponseSet is an immutable snapshot of the response store, keyed by
// question id. The gating, completion and report engines are pure functions
// over a ResponseSet.
type ResponseSet map[string]Response

// Get returns the stored response or the canonical empty one.
func (rs ResponseSet) Get(questionID string) Response {
	if r, ok := rs[questionID]; ok {
		return r
	}
	return EmptyResponse(questionID)
}

// ResponseRecord is the persisted form of a Response: one row per
// (client, sector, question) with the response serialized as a JSON payload.
type ResponseRecord struct {
	ID         uint   `gorm:"primarykey"`
	ClientID   string `gorm:"uniqueIndex:idx_scope_question;not null"`
	SectorID   string `gorm:"uniqueIndex:idx_scope_question;not null"`
	QuestionID string `gorm:"uniqueIndex:idx_scope_question;not null"`
	Payload    string `gorm:"type:text;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName specifies the table name for the ResponseRecord model.
func (ResponseRecord) TableName() string {
	return "question_responses"
}

// NewResponseRecord serializes a response for persistence.
func NewResponseRecord(clientID, sectorID string, resp Response) (*ResponseRecord, error) {
	payload, err := json.Marshal(resp.Normalize())
	if err != nil {
		return nil, fmt.Errorf("failed to serialize response for question '%s': %w", resp.QuestionID, err)
	}
	return &ResponseRecord{
		ClientID:   clientID,
		SectorID:   sectorID,
		QuestionID: resp.QuestionID,
		Payload:    string(payload),
	}, nil
}

// Decode rebuilds the Response from the stored payload. Fields missing from
// the payload (older records, schema drift) default to their empty values
// rather than failing, so hydration always yields a well-formed response.
func (rec *ResponseRecord) Decode() (Response, error) {
	resp := EmptyResponse(rec.QuestionID)
	if rec.Payload != "" {
		if err := json.Unmarshal([]byte(rec.Payload), &resp); err != nil {
			return Response{}, fmt.Errorf("failed to decode stored response for question '%s': %w", rec.QuestionID, err)
		}
	}
	resp.QuestionID = rec.QuestionID // the row key is authoritative
	return resp.Normalize(), nil
}
