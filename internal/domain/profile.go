package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ScoreRecord is the result of one quiz attempt. Its JSON is carried
// verbatim, so fields and number formats written by other clients survive
// every read and rewrite.
type ScoreRecord struct {
	raw json.RawMessage
}

// scoreFields is the view of a score record used for display. Fields with
// an unexpected type read as their zero value.
type scoreFields struct {
	Topic string  `json:"topic"`
	Score float64 `json:"score"`
	Total float64 `json:"total"`
	Date  string  `json:"date"`
}

// NewScoreRecord builds a score record from its usual fields.
func NewScoreRecord(topic string, score, total float64, date string) ScoreRecord {
	raw, _ := json.Marshal(scoreFields{Topic: topic, Score: score, Total: total, Date: date})
	return ScoreRecord{raw: raw}
}

// RawScoreRecord wraps an already encoded score record.
func RawScoreRecord(raw json.RawMessage) ScoreRecord {
	return ScoreRecord{raw: append(json.RawMessage(nil), raw...)}
}

// Raw returns the record's JSON.
func (r ScoreRecord) Raw() json.RawMessage {
	if len(r.raw) == 0 {
		return json.RawMessage("null")
	}
	return r.raw
}

// MarshalJSON implements json.Marshaler.
func (r ScoreRecord) MarshalJSON() ([]byte, error) {
	return r.Raw(), nil
}

// UnmarshalJSON implements json.Unmarshaler. Any JSON value is accepted.
func (r *ScoreRecord) UnmarshalJSON(data []byte) error {
	r.raw = append(json.RawMessage(nil), data...)
	return nil
}

// Equal reports whether both records hold the same JSON, ignoring whitespace.
func (r ScoreRecord) Equal(o ScoreRecord) bool {
	var a, b bytes.Buffer
	if json.Compact(&a, r.Raw()) != nil || json.Compact(&b, o.Raw()) != nil {
		return bytes.Equal(r.Raw(), o.Raw())
	}
	return bytes.Equal(a.Bytes(), b.Bytes())
}

func (r ScoreRecord) fields() scoreFields {
	var f scoreFields
	_ = json.Unmarshal(r.Raw(), &f)
	return f
}

// Topic returns the quiz topic, or "" when absent.
func (r ScoreRecord) Topic() string { return r.fields().Topic }

// Score returns the points obtained.
func (r ScoreRecord) Score() float64 { return r.fields().Score }

// Total returns the maximum points.
func (r ScoreRecord) Total() float64 { return r.fields().Total }

// Date returns the attempt date as written by the client.
func (r ScoreRecord) Date() string { return r.fields().Date }

// StudentProfile is a learner's persistent record of quiz scores.
type StudentProfile struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Scores []ScoreRecord `json:"scores"`
}

// Clone returns a copy of the profile that shares no score storage.
func (p StudentProfile) Clone() StudentProfile {
	out := p
	out.Scores = make([]ScoreRecord, len(p.Scores))
	for i, s := range p.Scores {
		out.Scores[i] = RawScoreRecord(s.raw)
	}
	return out
}

// MatchesName reports whether the profile name equals name, ignoring case
// and surrounding whitespace of the query.
func (p StudentProfile) MatchesName(name string) bool {
	return strings.ToLower(p.Name) == strings.ToLower(strings.TrimSpace(name))
}

// CloneProfiles deep-copies a profile list. A nil input yields an empty list.
func CloneProfiles(profiles []StudentProfile) []StudentProfile {
	out := make([]StudentProfile, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p.Clone())
	}
	return out
}
