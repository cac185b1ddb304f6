// Package match selects, deduplicates and ranks specialist records from
// an externally owned candidate pool against a rule-derived risk
// profile. Matching is greedy and best-effort: lookup failures and empty
// pools degrade to smaller results, never to errors.
package match

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"

	"cardiorisk/internal/profile"
)

// Specialist is a candidate record from the specialist pool. It is owned
// by the storage collaborator and read-only here. Optional fields keep
// their zero value when unknown; a missing rating ranks as 0.
type Specialist struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Specialty    string  `json:"specialty"`
	Subspecialty string  `json:"subspecialty,omitempty"`
	Region       string  `json:"region,omitempty"`
	Rating       float64 `json:"rating,omitempty"`
	Phone        string  `json:"phone,omitempty"`
	Office       string  `json:"office,omitempty"`
	Province     string  `json:"province,omitempty"`
	District     string  `json:"district,omitempty"`
	ReviewCount  int     `json:"review_count,omitempty"`
	VisitPrice   float64 `json:"visit_price,omitempty"`
	Address      string  `json:"address,omitempty"`
	Latitude     float64 `json:"latitude,omitempty"`
	Longitude    float64 `json:"longitude,omitempty"`
	Email        string  `json:"email,omitempty"`
}

// CandidateLookup is the read capability the matcher depends on,
// implemented by the storage collaborator.
type CandidateLookup interface {
	// FindBySpecialty matches candidates whose subspecialty contains text
	// (case-insensitive) or whose specialty is general cardiology, ranked
	// by rating descending.
	FindBySpecialty(ctx context.Context, text string, limit int) ([]Specialist, error)
	// FindGeneralCardiologists returns the best general cardiologists,
	// ranked by rating descending.
	FindGeneralCardiologists(ctx context.Context, limit int) ([]Specialist, error)
}

// Recommendation is the composed matching result: at most five
// specialists in descending rating order, plus the detected profile and
// the sanitized specialties used for the lookups.
type Recommendation struct {
	Specialists            []Specialist `json:"specialists"`
	DetectedProfile        string       `json:"detected_profile"`
	RecommendedSpecialties []string     `json:"recommended_specialties"`
}

const (
	maxResults        = 5
	perSpecialtyLimit = 5
	topUpThreshold    = 3
	maxSpecialties    = 2
)

// Recommend builds a specialist recommendation for the given risk
// profile. Only the top two profile specialties are used, each sanitized
// against the specialty whitelist first. Candidates are deduplicated by
// ID; when fewer than three distinct candidates accumulate, the list is
// topped up from the general cardiologist pool. Never fails: an empty
// pool yields an empty recommendation.
func Recommend(ctx context.Context, p profile.Profile, lookup CandidateLookup) Recommendation {
	requested := p.Specialties
	if len(requested) == 0 {
		requested = []string{profile.GeneralCardiology}
	}
	if len(requested) > maxSpecialties {
		requested = requested[:maxSpecialties]
	}

	sanitized := make([]string, len(requested))
	for i, s := range requested {
		sanitized[i] = profile.Sanitize(s)
	}

	seen := make(map[int64]struct{})
	accumulated := make([]Specialist, 0, maxResults)

	for _, specialty := range sanitized {
		candidates, err := lookup.FindBySpecialty(ctx, specialty, perSpecialtyLimit)
		if err != nil {
			log.Warn().Err(err).Str("specialty", specialty).Msg("specialist lookup failed")
			continue
		}
		for _, c := range candidates {
			if _, dup := seen[c.ID]; dup {
				continue
			}
			seen[c.ID] = struct{}{}
			accumulated = append(accumulated, c)
		}
	}

	if len(accumulated) < topUpThreshold {
		general, err := lookup.FindGeneralCardiologists(ctx, perSpecialtyLimit)
		if err != nil {
			log.Warn().Err(err).Msg("general cardiologist lookup failed")
		}
		for _, c := range general {
			if len(accumulated) >= maxResults {
				break
			}
			if _, dup := seen[c.ID]; dup {
				continue
			}
			seen[c.ID] = struct{}{}
			accumulated = append(accumulated, c)
		}
	}

	sort.SliceStable(accumulated, func(i, j int) bool {
		return accumulated[i].Rating > accumulated[j].Rating
	})
	if len(accumulated) > maxResults {
		accumulated = accumulated[:maxResults]
	}

	detected := p.Primary
	if detected == "" {
		detected = profile.GeneralCardiology
	}

	return Recommendation{
		Specialists:            accumulated,
		DetectedProfile:        detected,
		RecommendedSpecialties: sanitized,
	}
}
