package storage

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.etcd.io/bbolt"

	"cardiorisk/internal/match"
)

// cardiologyMark matches the specialty spellings used by the imported
// pool data (CARDIOLOGY, CARDIOLOGIST, ...).
const cardiologyMark = "CARDIOLOG"

// PutSpecialist inserts or replaces one specialist record.
func (s *Store) PutSpecialist(sp match.Specialist) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(specialistsBucket))
		data, err := json.Marshal(sp)
		if err != nil {
			return fmt.Errorf("marshal specialist: %w", err)
		}
		return b.Put(specialistKey(sp.ID), data)
	})
}

// SeedSpecialists loads a JSON array of specialists from path into the
// pool, replacing records with matching IDs. Returns how many were
// stored.
func (s *Store) SeedSpecialists(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var specialists []match.Specialist
	if err := json.Unmarshal(data, &specialists); err != nil {
		return 0, fmt.Errorf("parse specialist seed: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(specialistsBucket))
		for _, sp := range specialists {
			data, err := json.Marshal(sp)
			if err != nil {
				return fmt.Errorf("marshal specialist %d: %w", sp.ID, err)
			}
			if err := b.Put(specialistKey(sp.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(specialists), nil
}

// FindBySpecialty implements match.CandidateLookup: candidates whose
// subspecialty contains text (case-insensitive) or whose specialty is
// cardiology, ranked by rating descending and limited.
func (s *Store) FindBySpecialty(ctx context.Context, text string, limit int) ([]match.Specialist, error) {
	needle := strings.ToUpper(strings.TrimSpace(text))
	return s.scanSpecialists(ctx, limit, func(sp match.Specialist) bool {
		if needle != "" && strings.Contains(strings.ToUpper(sp.Subspecialty), needle) {
			return true
		}
		return isCardiologist(sp)
	})
}

// FindGeneralCardiologists implements match.CandidateLookup: the best
// cardiologists regardless of subspecialty.
func (s *Store) FindGeneralCardiologists(ctx context.Context, limit int) ([]match.Specialist, error) {
	return s.scanSpecialists(ctx, limit, isCardiologist)
}

// ListSpecialists returns one page of the cardiologist pool in rating
// order, plus the total pool size.
func (s *Store) ListSpecialists(limit, offset int) ([]match.Specialist, int, error) {
	all, err := s.scanSpecialists(context.Background(), 0, isCardiologist)
	if err != nil {
		return nil, 0, err
	}
	total := len(all)
	if offset >= total {
		return []match.Specialist{}, total, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

// scanSpecialists collects matching records, sorts them by rating
// descending and truncates to limit (0 means no limit). Malformed
// records are skipped.
func (s *Store) scanSpecialists(ctx context.Context, limit int, matches func(match.Specialist) bool) ([]match.Specialist, error) {
	var out []match.Specialist
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(specialistsBucket))
		return b.ForEach(func(_, v []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var sp match.Specialist
			if err := json.Unmarshal(v, &sp); err != nil {
				return nil
			}
			if matches(sp) {
				out = append(out, sp)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func isCardiologist(sp match.Specialist) bool {
	return strings.Contains(strings.ToUpper(sp.Specialty), cardiologyMark)
}

func specialistKey(id int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id))
	return key
}
