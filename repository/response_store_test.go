package repository

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmms090191-rgb/duerp-sub001/models"
)

// recordingPersister is a hand-rolled Persister double that records calls
// under a mutex, so tests can assert on the asynchronous hand-off without
// races.
type recordingPersister struct {
	mu         sync.Mutex
	saveErr    error
	saved      []models.Response
	deleted    [][]string
	deletedAll int
}

func (p *recordingPersister) SaveResponse(clientID, sectorID string, resp models.Response) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.saveErr != nil {
		return p.saveErr
	}
	p.saved = append(p.saved, resp)
	return nil
}

func (p *recordingPersister) LoadResponses(clientID, sectorID string) (models.ResponseSet, error) {
	return nil, nil
}

func (p *recordingPersister) DeleteResponses(clientID, sectorID string, questionIDs []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, questionIDs)
	return nil
}

func (p *recordingPersister) DeleteAllResponses(clientID, sectorID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deletedAll++
	return nil
}

func (p *recordingPersister) savedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.saved)
}

func (p *recordingPersister) savedStatuses() []models.RiskStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	statuses := make([]models.RiskStatus, 0, len(p.saved))
	for _, resp := range p.saved {
		statuses = append(statuses, resp.RiskStatus)
	}
	return statuses
}

// stallingPersister holds every save until the test releases it, to observe
// how hand-offs behave while one is still in flight.
type stallingPersister struct {
	recordingPersister
	release chan struct{}
}

func (p *stallingPersister) SaveResponse(clientID, sectorID string, resp models.Response) error {
	<-p.release
	return p.recordingPersister.SaveResponse(clientID, sectorID, resp)
}

func (p *recordingPersister) deletedSets() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.deleted)
}

func testCategory() *models.Category {
	return &models.Category{
		ID:   "cat_b",
		Kind: models.CategoryPlainList,
		Questions: []models.Question{
			{ID: "q_b1", Kind: models.QuestionStandard},
			{ID: "q_b2", Kind: models.QuestionStandard},
		},
	}
}

func setStatus(status models.RiskStatus) func(models.Response) models.Response {
	return func(resp models.Response) models.Response {
		resp.RiskStatus = status
		return resp
	}
}

func TestResponseStoreGetDefault(t *testing.T) {
	store := NewResponseStore("client1", "general", nil, nil)

	resp := store.Get("q_unknown")
	assert.Equal(t, models.EmptyResponse("q_unknown"), resp)
	assert.NotNil(t, resp.SelectedMeasureIDs)
	assert.NotNil(t, resp.ActionPlan)
	assert.Equal(t, 0, store.Len())
}

func TestResponseStoreApply(t *testing.T) {
	persister := &recordingPersister{}
	store := NewResponseStore("client1", "general", persister, nil)

	t.Run("read-your-write", func(t *testing.T) {
		resp, err := store.Apply("q1", setStatus(models.RiskStatusMastered))
		assert.NoError(t, err)
		assert.Equal(t, models.RiskStatusMastered, resp.RiskStatus)
		assert.Equal(t, models.RiskStatusMastered, store.Get("q1").RiskStatus)
	})

	t.Run("updater sees the current value", func(t *testing.T) {
		_, err := store.Apply("q1", func(resp models.Response) models.Response {
			assert.Equal(t, models.RiskStatusMastered, resp.RiskStatus)
			resp.Remarks = "checked on site"
			return resp
		})
		assert.NoError(t, err)
		stored := store.Get("q1")
		assert.Equal(t, "checked on site", stored.Remarks)
		assert.Equal(t, models.RiskStatusMastered, stored.RiskStatus)
	})

	t.Run("selected measure ids are deduplicated", func(t *testing.T) {
		resp, err := store.Apply("q2", func(resp models.Response) models.Response {
			resp.SelectedMeasureIDs = []string{"m1", "m2", "m1", "m1"}
			return resp
		})
		assert.NoError(t, err)
		assert.Equal(t, []string{"m1", "m2"}, resp.SelectedMeasureIDs)
	})

	t.Run("mutations reach the persister", func(t *testing.T) {
		assert.Eventually(t, func() bool { return persister.savedCount() >= 3 }, time.Second, 10*time.Millisecond)
	})
}

func TestResponseStoreSavesInIssueOrder(t *testing.T) {
	persister := &stallingPersister{release: make(chan struct{})}
	store := NewResponseStore("client1", "general", persister, nil)

	_, err := store.Apply("q1", setStatus(models.RiskStatusUnmastered))
	assert.NoError(t, err)
	_, err = store.Apply("q1", setStatus(models.RiskStatusMastered))
	assert.NoError(t, err)

	// The first save is stalled inside the persister; the second hand-off
	// must wait behind it instead of racing past.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, persister.savedCount())

	persister.release <- struct{}{}
	persister.release <- struct{}{}

	assert.Eventually(t, func() bool { return persister.savedCount() == 2 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, []models.RiskStatus{models.RiskStatusUnmastered, models.RiskStatusMastered}, persister.savedStatuses())
	assert.Equal(t, models.RiskStatusMastered, store.Get("q1").RiskStatus)
}

func TestResponseStoreSnapshotIsolation(t *testing.T) {
	store := NewResponseStore("client1", "general", nil, nil)
	_, _ = store.Apply("q1", setStatus(models.RiskStatusUnmastered))

	snapshot := store.Snapshot()
	mutated := snapshot["q1"]
	mutated.RiskStatus = models.RiskStatusMastered
	mutated.ActionPlan = append(mutated.ActionPlan, models.ActionItem{ID: "a"})
	snapshot["q1"] = mutated

	assert.Equal(t, models.RiskStatusUnmastered, store.Get("q1").RiskStatus)
	assert.Empty(t, store.Get("q1").ActionPlan)
}

func TestResponseStoreResetCategory(t *testing.T) {
	persister := &recordingPersister{}
	store := NewResponseStore("client1", "general", persister, nil)
	_, _ = store.Apply("q_a1", setStatus(models.RiskStatusMastered))
	_, _ = store.Apply("q_b1", setStatus(models.RiskStatusMastered))
	_, _ = store.Apply("q_b2", setStatus(models.RiskStatusNotApplicable))
	_, _ = store.Apply("q_c1", setStatus(models.RiskStatusMastered))

	assert.NoError(t, store.ResetCategory(testCategory()))

	snapshot := store.Snapshot()
	assert.Equal(t, 2, len(snapshot))
	_, hasA := snapshot["q_a1"]
	_, hasC := snapshot["q_c1"]
	assert.True(t, hasA)
	assert.True(t, hasC)

	assert.Eventually(t, func() bool { return persister.deletedSets() == 1 }, time.Second, 10*time.Millisecond)

	t.Run("second reset is a no-op for the persister", func(t *testing.T) {
		assert.NoError(t, store.ResetCategory(testCategory()))
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, 1, persister.deletedSets())
	})
}

func TestResponseStoreResetAll(t *testing.T) {
	persister := &recordingPersister{}
	store := NewResponseStore("client1", "general", persister, nil)
	_, _ = store.Apply("q1", setStatus(models.RiskStatusMastered))
	_, _ = store.Apply("q2", setStatus(models.RiskStatusMastered))

	assert.NoError(t, store.ResetAll())
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, models.EmptyResponse("q1"), store.Get("q1"))
}

func TestResponseStoreClose(t *testing.T) {
	persister := &recordingPersister{}
	store := NewResponseStore("client1", "general", persister, nil)
	_, _ = store.Apply("q1", setStatus(models.RiskStatusMastered))
	assert.Eventually(t, func() bool { return persister.savedCount() == 1 }, time.Second, 10*time.Millisecond)

	store.Close()

	t.Run("mutations are rejected", func(t *testing.T) {
		_, err := store.Apply("q1", setStatus(models.RiskStatusUnmastered))
		assert.ErrorIs(t, err, ErrScopeClosed)
		assert.ErrorIs(t, store.ResetAll(), ErrScopeClosed)
		assert.ErrorIs(t, store.ResetCategory(testCategory()), ErrScopeClosed)
	})

	t.Run("reads keep working", func(t *testing.T) {
		assert.Equal(t, models.RiskStatusMastered, store.Get("q1").RiskStatus)
	})

	t.Run("nothing new reaches the persister", func(t *testing.T) {
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, 1, persister.savedCount())
	})
}

func TestResponseStoreSaveErrorSurfacedNotRolledBack(t *testing.T) {
	persister := &recordingPersister{saveErr: errors.New("connection lost")}
	store := NewResponseStore("client1", "general", persister, nil)

	resp, err := store.Apply("q1", setStatus(models.RiskStatusMastered))
	assert.NoError(t, err)
	assert.Equal(t, models.RiskStatusMastered, resp.RiskStatus)

	assert.Eventually(t, func() bool { return store.LastSaveError() != nil }, time.Second, 10*time.Millisecond)
	assert.Equal(t, models.RiskStatusMastered, store.Get("q1").RiskStatus)

	t.Run("a later successful save clears the warning", func(t *testing.T) {
		persister.mu.Lock()
		persister.saveErr = nil
		persister.mu.Unlock()
		_, err := store.Apply("q1", setStatus(models.RiskStatusMastered))
		assert.NoError(t, err)
		assert.Eventually(t, func() bool { return store.LastSaveError() == nil }, time.Second, 10*time.Millisecond)
	})
}

func TestResponseStoreHydration(t *testing.T) {
	hydrated := models.ResponseSet{
		"q1": {RiskStatus: models.RiskStatusMastered}, // missing collections, no QuestionID
	}
	store := NewResponseStore("client1", "general", nil, hydrated)

	resp := store.Get("q1")
	assert.Equal(t, "q1", resp.QuestionID)
	assert.Equal(t, models.RiskStatusMastered, resp.RiskStatus)
	assert.NotNil(t, resp.SelectedMeasureIDs)
	assert.NotNil(t, resp.CustomMeasures)
	assert.NotNil(t, resp.ActionPlan)
}
