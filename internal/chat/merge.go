package chat

import (
	"github.com/acoulibaly-ghb/lex-publica-admin-l2hz/internal/domain"
)

// Merge folds remote profiles into local ones. A remote profile with an
// unknown ID is appended. A remote profile sharing an ID with a local one
// replaces it only when it holds strictly more scores. Local order is kept.
// Neither input is modified.
func Merge(local, remote []domain.StudentProfile) []domain.StudentProfile {
	merged := domain.CloneProfiles(local)

	index := make(map[string]int, len(merged))
	for i, p := range merged {
		if _, seen := index[p.ID]; !seen {
			index[p.ID] = i
		}
	}

	for _, rp := range remote {
		i, ok := index[rp.ID]
		if !ok {
			merged = append(merged, rp.Clone())
			index[rp.ID] = len(merged) - 1
			continue
		}
		if len(rp.Scores) > len(merged[i].Scores) {
			merged[i] = rp.Clone()
		}
	}

	return normalizeProfiles(merged)
}

// normalizeProfiles makes every score list non-nil so profiles always
// serialize with "scores": [].
func normalizeProfiles(profiles []domain.StudentProfile) []domain.StudentProfile {
	for i := range profiles {
		if profiles[i].Scores == nil {
			profiles[i].Scores = []domain.ScoreRecord{}
		}
	}
	return profiles
}
