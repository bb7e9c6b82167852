package repository

import (
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dmms090191-rgb/duerp-sub001/models"
)

// responseRepository is the GORM-backed Persister implementation. One row per
// (client, sector, question); the response itself travels as a JSON payload
// so the schema does not chase the response shape.
type responseRepository struct {
	db *gorm.DB
}

// NewResponseRepository creates the database-backed persistence collaborator.
func NewResponseRepository(db *gorm.DB) Persister {
	return &responseRepository{db: db}
}

// SaveResponse upserts the response row for its (client, sector, question) key.
func (r *responseRepository) SaveResponse(clientID, sectorID string, resp models.Response) error {
	if clientID == "" || sectorID == "" {
		return fmt.Errorf("cannot save response for question '%s': empty client or sector id", resp.QuestionID)
	}
	record, err := models.NewResponseRecord(clientID, sectorID, resp)
	if err != nil {
		return err
	}
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "client_id"}, {Name: "sector_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(record)
	if result.Error != nil {
		return fmt.Errorf("failed to save response for question '%s' (client '%s', sector '%s'): %w", resp.QuestionID, clientID, sectorID, result.Error)
	}
	return nil
}

// LoadResponses hydrates the full response set for a scope. Rows whose payload
// no longer decodes are skipped with a warning instead of failing hydration:
// one corrupt row must not lock a client out of their assessment.
func (r *responseRepository) LoadResponses(clientID, sectorID string) (models.ResponseSet, error) {
	var records []models.ResponseRecord
	result := r.db.Where("client_id = ? AND sector_id = ?", clientID, sectorID).Find(&records)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load responses for (client '%s', sector '%s'): %w", clientID, sectorID, result.Error)
	}

	out := make(models.ResponseSet, len(records))
	for i := range records {
		resp, err := records[i].Decode()
		if err != nil {
			log.Printf("WARN: [ResponseRepository] Skipping undecodable response row %d (client '%s', sector '%s', question '%s'): %v", records[i].ID, clientID, sectorID, records[i].QuestionID, err)
			continue
		}
		out[resp.QuestionID] = resp
	}
	log.Printf("INFO: [ResponseRepository] Hydrated %d response(s) for (client '%s', sector '%s').", len(out), clientID, sectorID)
	return out, nil
}

// DeleteResponses removes the rows for the given question ids within a scope.
func (r *responseRepository) DeleteResponses(clientID, sectorID string, questionIDs []string) error {
	if len(questionIDs) == 0 {
		return nil
	}
	result := r.db.Where("client_id = ? AND sector_id = ? AND question_id IN ?", clientID, sectorID, questionIDs).
		Delete(&models.ResponseRecord{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete %d response(s) for (client '%s', sector '%s'): %w", len(questionIDs), clientID, sectorID, result.Error)
	}
	return nil
}

// DeleteAllResponses removes every row of a scope.
func (r *responseRepository) DeleteAllResponses(clientID, sectorID string) error {
	result := r.db.Where("client_id = ? AND sector_id = ?", clientID, sectorID).
		Delete(&models.ResponseRecord{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete responses for (client '%s', sector '%s'): %w", clientID, sectorID, result.Error)
	}
	return nil
}
