// Package storage provides persistent data storage for the risk
// evaluation service. It uses BoltDB as the underlying storage engine to
// store patient identities, evaluation records and the specialist pool.
//
// The engine's contract with this package is fire-and-forget: it submits
// records once and never reads them back within the same request.
package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"cardiorisk/internal/features"
	"cardiorisk/internal/validation"
)

const (
	patientsBucket    = "patients"    // Keyed by national ID
	evaluationsBucket = "evaluations" // Keyed by record UUID
	specialistsBucket = "specialists" // Keyed by specialist ID
)

// Store provides persistent storage using BoltDB. All operations are
// safe for concurrent use.
type Store struct {
	db *bbolt.DB
}

// PatientRecord is a stored patient identity, created at most once per
// national ID.
type PatientRecord struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	RecordID   string    `json:"record_id"`
	NationalID string    `json:"national_id"`
	BirthDate  string    `json:"birth_date"`
	Phone      string    `json:"phone,omitempty"`
	Address    string    `json:"address,omitempty"`
	Province   string    `json:"province"`
	City       string    `json:"city"`
	District   string    `json:"district"`
	CreatedAt  time.Time `json:"created_at"`
}

// EvaluationRecord is one stored evaluation. PatientID is empty for
// comparative evaluations kept as future training data.
type EvaluationRecord struct {
	ID         string    `json:"id"`
	PatientID  string    `json:"patient_id,omitempty"`
	Parameters []float64 `json:"parameters"`
	Label      int       `json:"label"`
	Model      string    `json:"model"`
	CreatedAt  time.Time `json:"created_at"`
}

// New opens the database under dataPath and creates the buckets.
func New(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, "cardiorisk-data.db")

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{patientsBucket, evaluationsBucket, specialistsBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create %s bucket: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection gracefully.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetOrCreatePatient returns the stored patient ID for the given
// identity, creating the record when no patient with that national ID
// exists yet.
func (s *Store) GetOrCreatePatient(p validation.Patient) (string, error) {
	var id string
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(patientsBucket))

		if data := b.Get([]byte(p.NationalID)); data != nil {
			var existing PatientRecord
			if err := json.Unmarshal(data, &existing); err == nil {
				id = existing.ID
				return nil
			}
			// Malformed record: overwrite below.
		}

		record := PatientRecord{
			ID:         uuid.NewString(),
			Name:       p.Name,
			RecordID:   p.RecordID,
			NationalID: p.NationalID,
			BirthDate:  p.BirthDate.Format("2006-01-02"),
			Phone:      p.Phone,
			Address:    p.Address,
			Province:   p.Province,
			City:       p.City,
			District:   p.District,
			CreatedAt:  time.Now().UTC(),
		}
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal patient: %w", err)
		}
		if err := b.Put([]byte(p.NationalID), data); err != nil {
			return err
		}
		id = record.ID
		return nil
	})
	return id, err
}

// SaveEvaluation appends one evaluation record. patientID may be empty
// for evaluations not tied to a patient identity.
func (s *Store) SaveEvaluation(patientID string, v features.Vector, label int, modelName string) (string, error) {
	record := EvaluationRecord{
		ID:         uuid.NewString(),
		PatientID:  patientID,
		Parameters: v.Slice(),
		Label:      label,
		Model:      modelName,
		CreatedAt:  time.Now().UTC(),
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(evaluationsBucket))
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal evaluation: %w", err)
		}
		return b.Put([]byte(record.ID), data)
	})
	if err != nil {
		return "", err
	}
	return record.ID, nil
}

// CountEvaluations returns the number of stored evaluation records.
func (s *Store) CountEvaluations() (int, error) {
	count := 0
	err := s.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket([]byte(evaluationsBucket)).Stats().KeyN
		return nil
	})
	return count, err
}
