package profiletest

import (
	"encoding/json"
	"sort"
)

const (
	// MinStrong is the score both frontend and backend need before a
	// fullstack score is derived.
	MinStrong = 4
	// BalanceBonus is added when frontend and backend differ by at most
	// BalanceSpread.
	BalanceBonus  = 3
	BalanceSpread = 2

	// MaxRecommendations caps the ranked result.
	MaxRecommendations = 3
)

// ScoreVector holds one score per category. Its key set is fixed.
type ScoreVector [numCategories]int

func (v ScoreVector) Get(c Category) int {
	return v[c-1]
}

func (v *ScoreVector) add(c Category, n int) {
	v[c-1] += n
}

func (v *ScoreVector) set(c Category, n int) {
	v[c-1] = n
}

// Map returns the scores keyed by category key.
func (v ScoreVector) Map() map[string]int {
	m := make(map[string]int, numCategories)
	for _, c := range Categories {
		m[c.String()] = v.Get(c)
	}
	return m
}

func (v ScoreVector) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Map())
}

// Recommendation is one ranked category ready for display.
type Recommendation struct {
	Category Category `json:"category"`
	Name     string   `json:"name"`
	PathID   string   `json:"pathId"`
	Score    int      `json:"score"`
}

// Result bundles the outcome of scoring one submission.
type Result struct {
	Scores          ScoreVector      `json:"scores"`
	Recommendations []Recommendation `json:"recommendations"`
}

// PathIDs returns the recommended path ids in rank order.
func (r Result) PathIDs() []string {
	ids := make([]string, 0, len(r.Recommendations))
	for _, rec := range r.Recommendations {
		ids = append(ids, rec.PathID)
	}
	return ids
}

// Scorer ranks answer sets against a questionnaire. It holds no mutable
// state and may be shared between goroutines.
type Scorer struct {
	questionnaire *Questionnaire
}

func NewScorer(q *Questionnaire) *Scorer {
	return &Scorer{questionnaire: q}
}

// Score accumulates option weights for every recognised answer and then
// derives fullstack. Unknown question ids, option ids and categories are
// skipped.
func (s *Scorer) Score(answers AnswerSet) ScoreVector {
	var scores ScoreVector

	for qid, selection := range answers {
		question, ok := s.questionnaire.Question(qid)
		if !ok {
			continue
		}
		for _, oid := range selection {
			option, ok := question.Option(oid)
			if !ok {
				continue
			}
			for c, w := range option.Weights {
				if !c.Valid() || w < 0 {
					continue
				}
				scores.add(c, w)
			}
		}
	}

	return DeriveFullstack(scores)
}

// DeriveFullstack replaces the fullstack score with one computed from
// frontend and backend. The derivation runs once and does not feed back
// into other categories.
func DeriveFullstack(scores ScoreVector) ScoreVector {
	fe, be := scores.Get(Frontend), scores.Get(Backend)

	fullstack := 0
	if fe >= MinStrong && be >= MinStrong {
		fullstack = fe + be
		diff := fe - be
		if diff < 0 {
			diff = -diff
		}
		if diff <= BalanceSpread {
			fullstack += BalanceBonus
		}
	}

	scores.set(Fullstack, fullstack)
	return scores
}

// Rank orders categories by score, highest first, with ties kept in
// declaration order. Only positive scores are returned, at most
// MaxRecommendations of them; when nothing is positive the first
// MaxRecommendations categories are returned instead.
func Rank(scores ScoreVector) []Recommendation {
	ordered := make([]Category, len(Categories))
	copy(ordered, Categories)
	sort.SliceStable(ordered, func(i, j int) bool {
		return scores.Get(ordered[i]) > scores.Get(ordered[j])
	})

	selected := make([]Category, 0, MaxRecommendations)
	for _, c := range ordered {
		if len(selected) == MaxRecommendations {
			break
		}
		if scores.Get(c) > 0 {
			selected = append(selected, c)
		}
	}
	if len(selected) == 0 {
		n := MaxRecommendations
		if n > len(ordered) {
			n = len(ordered)
		}
		selected = append(selected, ordered[:n]...)
	}

	recs := make([]Recommendation, 0, len(selected))
	for _, c := range selected {
		meta := c.Metadata()
		recs = append(recs, Recommendation{
			Category: c,
			Name:     meta.Name,
			PathID:   meta.PathID,
			Score:    scores.Get(c),
		})
	}
	return recs
}

// Recommend scores answers and ranks the result.
func (s *Scorer) Recommend(answers AnswerSet) Result {
	scores := s.Score(answers)
	return Result{
		Scores:          scores,
		Recommendations: Rank(scores),
	}
}
