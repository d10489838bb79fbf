package profiletest

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Selection is the option ids chosen for one question. It decodes from
// either a single JSON string or an array of strings.
type Selection []string

func (s *Selection) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*s = Selection{one}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("answer must be a string or an array of strings: %w", err)
	}
	*s = many
	return nil
}

// AnswerSet maps question ids to the options selected for them.
type AnswerSet map[string]Selection

// Answered counts questions with at least one non-blank option id.
func (a AnswerSet) Answered() int {
	n := 0
	for _, sel := range a {
		for _, id := range sel {
			if strings.TrimSpace(id) != "" {
				n++
				break
			}
		}
	}
	return n
}

// Empty reports whether no question carries a usable answer.
func (a AnswerSet) Empty() bool {
	return a.Answered() == 0
}

// Normalize trims option ids and drops blank ones and unanswered questions.
// Keys that only differ by surrounding whitespace are merged: their
// selections are joined in key order without repeating an option id.
func (a AnswerSet) Normalize() AnswerSet {
	keys := make([]string, 0, len(a))
	for qid := range a {
		keys = append(keys, qid)
	}
	sort.Strings(keys)

	out := make(AnswerSet, len(a))
	for _, qid := range keys {
		key := strings.TrimSpace(qid)
		ids, merging := out[key]
		for _, id := range a[qid] {
			id = strings.TrimSpace(id)
			if id == "" || (merging && ids.contains(id)) {
				continue
			}
			ids = append(ids, id)
		}
		if len(ids) > 0 {
			out[key] = ids
		}
	}
	return out
}

func (s Selection) contains(id string) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}
