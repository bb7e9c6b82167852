package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dmms090191-rgb/duerp-sub001/catalog"
	"github.com/dmms090191-rgb/duerp-sub001/models"
	"github.com/dmms090191-rgb/duerp-sub001/repository"
)

// Validation errors surfaced to the API layer. These are caller mistakes
// (bad question id, operation not applicable to the question kind), as
// opposed to persistence failures, which never fail the mutation itself.
var (
	ErrUnknownQuestion  = errors.New("unknown question id for this sector")
	ErrUnknownCategory  = errors.New("unknown category id for this sector")
	ErrUnknownMeasure   = errors.New("measure id does not belong to this question")
	ErrNotGateQuestion  = errors.New("operation only applies to gate questions")
	ErrGateQuestion     = errors.New("operation does not apply to gate questions")
	ErrInvalidStatus    = errors.New("invalid risk status")
	ErrInvalidPriority  = errors.New("invalid risk priority")
	ErrActionNotFound   = errors.New("action item not found on this question")
	ErrEmptyDescription = errors.New("description must not be empty")
)

// Session is one active (client, sector) assessment scope: the immutable
// catalog, the response store, and the navigator cursor over them. Every
// mutation is a pure reducer applied through the store, followed by a
// navigator resync; persistence happens behind the store and never blocks.
type Session struct {
	ClientID string
	SectorID string
	Catalog  *models.QuestionCatalog

	store     *repository.ResponseStore
	navigator *Navigator
}

// SessionManager hands out Sessions keyed by (client, sector) and tears them
// down on switch. Two scopes never share mutable state; the catalog is shared
// read-only across scopes of the same sector.
type SessionManager struct {
	mu       sync.Mutex
	registry *catalog.Registry
	persist  repository.Persister
	active   map[string]*Session
}

// NewSessionManager creates the manager with its catalog source and
// persistence collaborator.
func NewSessionManager(registry *catalog.Registry, persist repository.Persister) *SessionManager {
	return &SessionManager{
		registry: registry,
		persist:  persist,
		active:   make(map[string]*Session),
	}
}

func scopeKey(clientID, sectorID string) string {
	return clientID + "|" + sectorID
}

// Open returns the session for (clientID, sectorID), hydrating it from the
// persistence collaborator if it is not active yet. Sector lookup is total
// (unknown sectors fall back to the default catalog); hydration failure is a
// real error, since starting silently empty would look like data loss.
func (m *SessionManager) Open(clientID, sectorID string) (*Session, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, errors.New("clientID cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Sector lookup first: unknown sector ids canonicalize to the default
	// catalog's id, so the scope key never depends on the raw input.
	cat := m.registry.Get(sectorID)
	key := scopeKey(clientID, cat.SectorID)
	if session, ok := m.active[key]; ok {
		return session, nil
	}
	var hydrated models.ResponseSet
	if m.persist != nil {
		var err error
		hydrated, err = m.persist.LoadResponses(clientID, cat.SectorID)
		if err != nil {
			errMsg := fmt.Sprintf("failed to hydrate responses for (client '%s', sector '%s')", clientID, cat.SectorID)
			log.Printf("ERROR: [SessionManager] %s: %v", errMsg, err)
			return nil, fmt.Errorf("%s: %w", errMsg, err)
		}
	}

	store := repository.NewResponseStore(clientID, cat.SectorID, m.persist, hydrated)
	session := &Session{
		ClientID:  clientID,
		SectorID:  cat.SectorID,
		Catalog:   cat,
		store:     store,
		navigator: NewNavigator(cat, store.Snapshot()),
	}
	m.active[key] = session
	log.Printf("INFO: [SessionManager] Opened scope (client '%s', sector '%s') with %d hydrated response(s).", clientID, cat.SectorID, store.Len())
	return session, nil
}

// Get returns an already-open session without hydrating.
func (m *SessionManager) Get(clientID, sectorID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.active[scopeKey(clientID, m.registry.Get(sectorID).SectorID)]
	return session, ok
}

// Close tears a scope down. The store rejects further mutations and drops
// in-flight persistence hand-offs, so nothing from the old scope can leak
// into a newly opened one.
func (m *SessionManager) Close(clientID, sectorID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := scopeKey(clientID, m.registry.Get(sectorID).SectorID)
	if session, ok := m.active[key]; ok {
		session.store.Close()
		delete(m.active, key)
		log.Printf("INFO: [SessionManager] Closed scope (client '%s', sector '%s').", clientID, sectorID)
	}
}

// --- question lookup helpers ---

func (s *Session) standardQuestion(questionID string) (*models.Question, error) {
	q, ok := s.Catalog.QuestionByID(questionID)
	if !ok {
		return nil, ErrUnknownQuestion
	}
	if q.IsGate() {
		return nil, ErrGateQuestion
	}
	return q, nil
}

// apply runs the reducer through the store and resyncs the navigator. This is
// the single seam between the pure update logic and its effects (store write,
// async persistence, auto-advance).
func (s *Session) apply(questionID string, reducer func(models.Response) models.Response) (models.Response, error) {
	resp, err := s.store.Apply(questionID, reducer)
	if err != nil {
		return models.Response{}, err
	}
	s.navigator.Resync(s.store.Snapshot())
	return resp, nil
}

// --- mutation operations ---

// AnswerGate records the binary answer of a gate question: affirmed maps to
// RiskStatusMastered ("yes"), denied to RiskStatusUnmastered ("no"). Gate
// responses never carry measures or action plans; the reducer keeps only the
// status so the invariant holds no matter what was stored before.
func (s *Session) AnswerGate(questionID string, affirmed bool) (models.Response, error) {
	q, ok := s.Catalog.QuestionByID(questionID)
	if !ok {
		return models.Response{}, ErrUnknownQuestion
	}
	if !q.IsGate() {
		return models.Response{}, ErrNotGateQuestion
	}
	status := models.RiskStatusUnmastered
	if affirmed {
		status = models.RiskStatusMastered
	}
	return s.apply(questionID, func(models.Response) models.Response {
		resp := models.EmptyResponse(questionID)
		resp.RiskStatus = status
		return resp
	})
}

// SetRiskStatus records the risk classification of a standard question.
func (s *Session) SetRiskStatus(questionID string, status models.RiskStatus) (models.Response, error) {
	if _, err := s.standardQuestion(questionID); err != nil {
		return models.Response{}, err
	}
	if !status.IsValid() {
		return models.Response{}, ErrInvalidStatus
	}
	return s.apply(questionID, func(resp models.Response) models.Response {
		resp.RiskStatus = status
		return resp
	})
}

// SetRiskPriority records the remediation priority of a standard question.
func (s *Session) SetRiskPriority(questionID string, priority models.RiskPriority) (models.Response, error) {
	if _, err := s.standardQuestion(questionID); err != nil {
		return models.Response{}, err
	}
	if !priority.IsValid() {
		return models.Response{}, ErrInvalidPriority
	}
	return s.apply(questionID, func(resp models.Response) models.Response {
		resp.RiskPriority = priority
		return resp
	})
}

// ToggleMeasure flips the selection of one of the question's catalog
// measures. Ids that do not belong to the question are rejected up front, so
// stored selections can only dangle through later catalog updates, never
// through bad writes.
func (s *Session) ToggleMeasure(questionID, measureID string) (models.Response, error) {
	q, err := s.standardQuestion(questionID)
	if err != nil {
		return models.Response{}, err
	}
	if _, ok := q.MeasureByID(measureID); !ok {
		return models.Response{}, ErrUnknownMeasure
	}
	return s.apply(questionID, func(resp models.Response) models.Response {
		if resp.HasMeasureSelected(measureID) {
			kept := resp.SelectedMeasureIDs[:0]
			for _, id := range resp.SelectedMeasureIDs {
				if id != measureID {
					kept = append(kept, id)
				}
			}
			resp.SelectedMeasureIDs = kept
		} else {
			resp.SelectedMeasureIDs = append(resp.SelectedMeasureIDs, measureID)
		}
		return resp
	})
}

// AddCustomMeasure appends a free-text measure and returns the updated
// response; the new measure's id is server-generated.
func (s *Session) AddCustomMeasure(questionID, description string) (models.Response, error) {
	if _, err := s.standardQuestion(questionID); err != nil {
		return models.Response{}, err
	}
	if strings.TrimSpace(description) == "" {
		return models.Response{}, ErrEmptyDescription
	}
	measure := models.CustomMeasure{ID: uuid.NewString(), Description: description}
	return s.apply(questionID, func(resp models.Response) models.Response {
		resp.CustomMeasures = append(resp.CustomMeasures, measure)
		return resp
	})
}

// RemoveCustomMeasure deletes a custom measure by id; unknown ids are a no-op.
func (s *Session) RemoveCustomMeasure(questionID, measureID string) (models.Response, error) {
	if _, err := s.standardQuestion(questionID); err != nil {
		return models.Response{}, err
	}
	return s.apply(questionID, func(resp models.Response) models.Response {
		kept := resp.CustomMeasures[:0]
		for _, m := range resp.CustomMeasures {
			if m.ID != measureID {
				kept = append(kept, m)
			}
		}
		resp.CustomMeasures = kept
		return resp
	})
}

// AddActionItem appends a remediation action to the question's action plan.
// The item's id is server-generated.
func (s *Session) AddActionItem(questionID string, item models.ActionItem) (models.Response, error) {
	if _, err := s.standardQuestion(questionID); err != nil {
		return models.Response{}, err
	}
	if strings.TrimSpace(item.Description) == "" {
		return models.Response{}, ErrEmptyDescription
	}
	item.ID = uuid.NewString()
	return s.apply(questionID, func(resp models.Response) models.Response {
		resp.ActionPlan = append(resp.ActionPlan, item)
		return resp
	})
}

// UpdateActionItem replaces the action item with the same id, keeping its
// position in the plan.
func (s *Session) UpdateActionItem(questionID string, item models.ActionItem) (models.Response, error) {
	if _, err := s.standardQuestion(questionID); err != nil {
		return models.Response{}, err
	}
	found := false
	resp, err := s.apply(questionID, func(resp models.Response) models.Response {
		for i := range resp.ActionPlan {
			if resp.ActionPlan[i].ID == item.ID {
				resp.ActionPlan[i] = item
				found = true
				break
			}
		}
		return resp
	})
	if err != nil {
		return models.Response{}, err
	}
	if !found {
		return resp, ErrActionNotFound
	}
	return resp, nil
}

// RemoveActionItem deletes an action item by id; unknown ids are a no-op.
func (s *Session) RemoveActionItem(questionID, itemID string) (models.Response, error) {
	if _, err := s.standardQuestion(questionID); err != nil {
		return models.Response{}, err
	}
	return s.apply(questionID, func(resp models.Response) models.Response {
		kept := resp.ActionPlan[:0]
		for _, item := range resp.ActionPlan {
			if item.ID != itemID {
				kept = append(kept, item)
			}
		}
		resp.ActionPlan = kept
		return resp
	})
}

// SetRemarks stores the free-text remarks of a standard question. The UI
// debounces keystrokes; by the time this is called the text is final enough
// to persist.
func (s *Session) SetRemarks(questionID, remarks string) (models.Response, error) {
	if _, err := s.standardQuestion(questionID); err != nil {
		return models.Response{}, err
	}
	return s.apply(questionID, func(resp models.Response) models.Response {
		resp.Remarks = remarks
		return resp
	})
}

// --- navigation and queries ---

// Response returns the stored (or canonical empty) response for a question.
func (s *Session) Response(questionID string) (models.Response, error) {
	if _, ok := s.Catalog.QuestionByID(questionID); !ok {
		return models.Response{}, ErrUnknownQuestion
	}
	return s.store.Get(questionID), nil
}

// State returns the navigator cursor.
func (s *Session) State() NavigatorState {
	return s.navigator.State()
}

// GoNext advances the cursor; moved is false at the terminal state.
func (s *Session) GoNext() (NavigatorState, bool) {
	return s.navigator.GoNext(s.store.Snapshot())
}

// GoPrev retreats the cursor; moved is false at the start of the catalog.
func (s *Session) GoPrev() (NavigatorState, bool) {
	return s.navigator.GoPrev(s.store.Snapshot())
}

// SelectCategory jumps to a reachable category (manual navigation is never
// blocked by completion state).
func (s *Session) SelectCategory(index int) (NavigatorState, bool) {
	return s.navigator.SelectCategory(index, s.store.Snapshot())
}

// SelectQuestion jumps to a question within the active category.
func (s *Session) SelectQuestion(index int) (NavigatorState, bool) {
	return s.navigator.SelectQuestion(index)
}

// ResetCategory removes every response of one category, then resyncs.
func (s *Session) ResetCategory(categoryID string) error {
	category, _, ok := s.Catalog.CategoryByID(categoryID)
	if !ok {
		return ErrUnknownCategory
	}
	if err := s.store.ResetCategory(category); err != nil {
		return err
	}
	s.navigator.Resync(s.store.Snapshot())
	return nil
}

// ResetAll clears the whole scope and places the cursor back at the start.
func (s *Session) ResetAll() error {
	if err := s.store.ResetAll(); err != nil {
		return err
	}
	s.navigator.Reset(s.store.Snapshot())
	return nil
}

// Progress computes the sector-wide summary statistics.
func (s *Session) Progress() models.SummaryStats {
	return ComputeSummaryStats(s.Catalog, s.store.Snapshot())
}

// Report compiles the report document for the rendering collaborator.
func (s *Session) Report(generalRemarks string) *models.ReportDocument {
	return CompileReport(s.Catalog, s.store.Snapshot(), s.ClientID, generalRemarks)
}

// PersistWarning returns the last asynchronous save failure, or nil. The
// in-memory edits are intact either way; the caller decides whether to warn,
// retry or block.
func (s *Session) PersistWarning() error {
	return s.store.LastSaveError()
}

// Snapshot exposes the current response set (deep copy) for read-only use.
func (s *Session) Snapshot() models.ResponseSet {
	return s.store.Snapshot()
}
