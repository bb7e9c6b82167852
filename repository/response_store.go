package repository

import (
	"errors"
	"log"
	"sync"

	"github.com/dmms090191-rgb/duerp-sub001/models"
)

// ErrScopeClosed is returned by mutations after the store's (client, sector)
// scope has been torn down (e.g. the user switched sector).
var ErrScopeClosed = errors.New("response store scope is closed")

// Persister is the external persistence collaborator. The store hands every
// mutation to it by value, fire-and-forget; durability, retries and backoff
// are the collaborator's concern, never the store's.
type Persister interface {
	SaveResponse(clientID, sectorID string, resp models.Response) error
	LoadResponses(clientID, sectorID string) (models.ResponseSet, error)
	DeleteResponses(clientID, sectorID string, questionIDs []string) error
	DeleteAllResponses(clientID, sectorID string) error
}

// ResponseStore is the only mutable core state: the per-(client, sector) map
// from question id to Response. Mutations are atomic with respect to reads
// (read-your-write within the process); persistence happens asynchronously
// after the in-memory effect and never blocks or rolls it back.
//
// Hand-offs to the persister go through a single per-scope worker goroutine
// draining a queue filled under the store mutex, so the collaborator sees
// mutations in exactly the order they were applied. Without that, two rapid
// edits to the same question could upsert out of order and durably keep the
// stale payload.
type ResponseStore struct {
	clientID string
	sectorID string

	mu        sync.RWMutex
	responses map[string]models.Response
	queue     []func()
	closed    bool

	persister   Persister
	wake        chan struct{}
	saveErrMu   sync.Mutex
	lastSaveErr error
}

// NewResponseStore creates a store for one (client, sector) scope, seeded with
// the hydrated responses previously loaded from the persister (may be nil).
func NewResponseStore(clientID, sectorID string, persister Persister, hydrated models.ResponseSet) *ResponseStore {
	responses := make(map[string]models.Response, len(hydrated))
	for qid, resp := range hydrated {
		resp.QuestionID = qid
		responses[qid] = resp.Normalize()
	}
	s := &ResponseStore{
		clientID:  clientID,
		sectorID:  sectorID,
		responses: responses,
		persister: persister,
	}
	if persister != nil {
		s.wake = make(chan struct{}, 1)
		go s.persistLoop()
	}
	return s
}

// ClientID returns the scope's client id.
func (s *ResponseStore) ClientID() string { return s.clientID }

// SectorID returns the scope's sector id.
func (s *ResponseStore) SectorID() string { return s.sectorID }

// Get returns the stored response for the question, or the canonical empty
// response for unknown ids. It never returns shared mutable state.
func (s *ResponseStore) Get(questionID string) models.Response {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if resp, ok := s.responses[questionID]; ok {
		return resp.Clone()
	}
	return models.EmptyResponse(questionID)
}

// Apply runs a pure updater against the current response for the question and
// stores the result, atomically. All mutations (toggle measure, set status,
// add action item, ...) go through here, which is what guarantees
// read-modify-write consistency when several UI edits race.
// The new value is enqueued for the persistence worker while the lock is still
// held, so the queue order matches the in-memory mutation order; the returned
// response is already visible to the next Get regardless of persistence.
func (s *ResponseStore) Apply(questionID string, updater func(models.Response) models.Response) (models.Response, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return models.Response{}, ErrScopeClosed
	}
	current, ok := s.responses[questionID]
	if !ok {
		current = models.EmptyResponse(questionID)
	}
	next := updater(current.Clone()).Normalize()
	next.QuestionID = questionID
	s.responses[questionID] = next
	handoff := next.Clone()
	s.enqueueLocked(func() { s.persist(handoff) })
	s.mu.Unlock()

	return next.Clone(), nil
}

// enqueueLocked appends a persistence task and nudges the worker. Caller
// holds the write lock, which is what fixes the task order.
func (s *ResponseStore) enqueueLocked(task func()) {
	if s.persister == nil {
		return
	}
	s.queue = append(s.queue, task)
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// persistLoop is the scope's single persistence worker: it drains the task
// queue in order and exits once the scope is closed and the queue is empty.
func (s *ResponseStore) persistLoop() {
	for range s.wake {
		for {
			s.mu.Lock()
			if len(s.queue) == 0 {
				closed := s.closed
				s.mu.Unlock()
				if closed {
					return
				}
				break
			}
			task := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()
			task()
		}
	}
}

// persist forwards one mutation to the persistence collaborator. If the scope
// was closed while the hand-off was in flight, the save is dropped so nothing
// leaks into (or is attributed to) a torn-down scope.
func (s *ResponseStore) persist(resp models.Response) {
	if s.isClosed() {
		log.Printf("INFO: [ResponseStore] Dropping save for question '%s': scope (%s, %s) was closed.", resp.QuestionID, s.clientID, s.sectorID)
		return
	}
	if err := s.persister.SaveResponse(s.clientID, s.sectorID, resp); err != nil {
		log.Printf("ERROR: [ResponseStore] Failed to persist response for question '%s' (client '%s', sector '%s'): %v. In-memory state is kept; the save can be retried.", resp.QuestionID, s.clientID, s.sectorID, err)
		s.setSaveError(err)
		return
	}
	s.clearSaveError()
}

// persistDelete forwards a category reset to the collaborator.
func (s *ResponseStore) persistDelete(categoryID string, questionIDs []string) {
	if s.isClosed() {
		return
	}
	if err := s.persister.DeleteResponses(s.clientID, s.sectorID, questionIDs); err != nil {
		log.Printf("ERROR: [ResponseStore] Failed to persist category reset '%s' (client '%s', sector '%s'): %v", categoryID, s.clientID, s.sectorID, err)
		s.setSaveError(err)
	}
}

// persistDeleteAll forwards a full reset to the collaborator.
func (s *ResponseStore) persistDeleteAll() {
	if s.isClosed() {
		return
	}
	if err := s.persister.DeleteAllResponses(s.clientID, s.sectorID); err != nil {
		log.Printf("ERROR: [ResponseStore] Failed to persist full reset (client '%s', sector '%s'): %v", s.clientID, s.sectorID, err)
		s.setSaveError(err)
	}
}

// Snapshot returns a deep copy of all stored responses for the pure engines
// (gating, completion, report compilation).
func (s *ResponseStore) Snapshot() models.ResponseSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(models.ResponseSet, len(s.responses))
	for qid, resp := range s.responses {
		out[qid] = resp.Clone()
	}
	return out
}

// Len returns the number of questions with a stored response.
func (s *ResponseStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.responses)
}

// ResetCategory removes every response belonging to the given category,
// leaving all other responses untouched. The deletion joins the persistence
// queue behind any pending saves, keeping issue order.
func (s *ResponseStore) ResetCategory(category *models.Category) error {
	questionIDs := category.QuestionIDs()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrScopeClosed
	}
	removed := make([]string, 0, len(questionIDs))
	for _, qid := range questionIDs {
		if _, ok := s.responses[qid]; ok {
			delete(s.responses, qid)
			removed = append(removed, qid)
		}
	}
	if len(removed) > 0 {
		s.enqueueLocked(func() { s.persistDelete(category.ID, removed) })
	}
	s.mu.Unlock()

	if len(removed) > 0 {
		log.Printf("INFO: [ResponseStore] Reset category '%s' for (client '%s', sector '%s'): %d response(s) removed.", category.ID, s.clientID, s.sectorID, len(removed))
	}
	return nil
}

// ResetAll clears every response in the scope.
func (s *ResponseStore) ResetAll() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrScopeClosed
	}
	count := len(s.responses)
	s.responses = make(map[string]models.Response)
	s.enqueueLocked(func() { s.persistDeleteAll() })
	s.mu.Unlock()

	log.Printf("INFO: [ResponseStore] Reset all responses for (client '%s', sector '%s'): %d response(s) removed.", s.clientID, s.sectorID, count)
	return nil
}

// Close tears the scope down. Further mutations return ErrScopeClosed, queued
// persistence tasks become no-ops, and the worker exits. Reads keep working so
// a report compiled during teardown still sees consistent data.
func (s *ResponseStore) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.wake != nil {
		select {
		case s.wake <- struct{}{}:
		default:
		}
	}
	s.mu.Unlock()
	log.Printf("INFO: [ResponseStore] Closed scope (client '%s', sector '%s').", s.clientID, s.sectorID)
}

func (s *ResponseStore) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// LastSaveError returns the most recent persistence failure, or nil. The UI
// layer uses this to warn the user that an edit is not durably stored yet;
// the in-memory state is correct either way.
func (s *ResponseStore) LastSaveError() error {
	s.saveErrMu.Lock()
	defer s.saveErrMu.Unlock()
	return s.lastSaveErr
}

func (s *ResponseStore) setSaveError(err error) {
	s.saveErrMu.Lock()
	defer s.saveErrMu.Unlock()
	s.lastSaveErr = err
}

func (s *ResponseStore) clearSaveError() {
	s.saveErrMu.Lock()
	defer s.saveErrMu.Unlock()
	s.lastSaveErr = nil
}
