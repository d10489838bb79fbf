package profiletest

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

type QuestionType string

const (
	SingleChoice   QuestionType = "single-choice"
	MultipleChoice QuestionType = "multiple-choice"
)

type Option struct {
	ID      string
	Text    string
	Weights map[Category]int
}

type Question struct {
	ID      string
	Text    string
	Type    QuestionType
	Options []Option

	optionIndex map[string]int
}

// Option returns the option with the given id.
func (q *Question) Option(id string) (*Option, bool) {
	i, ok := q.optionIndex[id]
	if !ok {
		return nil, false
	}
	return &q.Options[i], true
}

// Questionnaire is the immutable question and weight table. It is safe for
// concurrent use once built.
type Questionnaire struct {
	questions []Question
	index     map[string]int
}

func (q *Questionnaire) Questions() []Question {
	return q.questions
}

func (q *Questionnaire) Question(id string) (*Question, bool) {
	i, ok := q.index[id]
	if !ok {
		return nil, false
	}
	return &q.questions[i], true
}

// file layout, shared by YAML and JSON sources
type questionnaireFile struct {
	Questions []struct {
		ID      string `yaml:"id"`
		Text    string `yaml:"text"`
		Type    string `yaml:"type"`
		Options []struct {
			ID      string         `yaml:"id"`
			Text    string         `yaml:"text"`
			Weights map[string]int `yaml:"weights"`
		} `yaml:"options"`
	} `yaml:"questions"`
}

// Parse builds a Questionnaire from YAML or JSON. Unknown fields, unknown
// categories, negative weights and duplicate ids are rejected here so the
// scorer never has to.
func Parse(data []byte) (*Questionnaire, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file questionnaireFile
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode questionnaire: %w", err)
	}
	if len(file.Questions) == 0 {
		return nil, errors.New("questionnaire has no questions")
	}

	q := &Questionnaire{
		questions: make([]Question, 0, len(file.Questions)),
		index:     make(map[string]int, len(file.Questions)),
	}

	for _, fq := range file.Questions {
		if fq.ID == "" {
			return nil, errors.New("question without id")
		}
		if _, dup := q.index[fq.ID]; dup {
			return nil, fmt.Errorf("duplicate question id %q", fq.ID)
		}

		qt := QuestionType(fq.Type)
		switch qt {
		case "":
			qt = SingleChoice
		case SingleChoice, MultipleChoice:
		default:
			return nil, fmt.Errorf("question %s: unknown type %q", fq.ID, fq.Type)
		}
		if len(fq.Options) == 0 {
			return nil, fmt.Errorf("question %s: no options", fq.ID)
		}

		question := Question{
			ID:          fq.ID,
			Text:        fq.Text,
			Type:        qt,
			Options:     make([]Option, 0, len(fq.Options)),
			optionIndex: make(map[string]int, len(fq.Options)),
		}
		for _, fo := range fq.Options {
			if fo.ID == "" {
				return nil, fmt.Errorf("question %s: option without id", fq.ID)
			}
			if _, dup := question.optionIndex[fo.ID]; dup {
				return nil, fmt.Errorf("question %s: duplicate option id %q", fq.ID, fo.ID)
			}

			weights := make(map[Category]int, len(fo.Weights))
			for key, w := range fo.Weights {
				c, ok := ParseCategory(key)
				if !ok {
					return nil, fmt.Errorf("option %s: unknown category %q", fo.ID, key)
				}
				if w < 0 {
					return nil, fmt.Errorf("option %s: negative weight for %s", fo.ID, key)
				}
				weights[c] = w
			}

			question.optionIndex[fo.ID] = len(question.Options)
			question.Options = append(question.Options, Option{ID: fo.ID, Text: fo.Text, Weights: weights})
		}

		q.index[fq.ID] = len(q.questions)
		q.questions = append(q.questions, question)
	}

	return q, nil
}

func LoadFile(path string) (*Questionnaire, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read questionnaire: %w", err)
	}
	return Parse(data)
}

// Load reads path, or returns the built-in questionnaire when path is empty.
func Load(path string) (*Questionnaire, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

//go:embed questionnaire.yaml
var defaultQuestionnaire []byte

var (
	defaultOnce sync.Once
	defaultQ    *Questionnaire
)

// Default returns the built-in questionnaire. It panics if the embedded
// data is invalid, which the package tests rule out.
func Default() *Questionnaire {
	defaultOnce.Do(func() {
		q, err := Parse(defaultQuestionnaire)
		if err != nil {
			panic(fmt.Sprintf("profiletest: embedded questionnaire: %v", err))
		}
		defaultQ = q
	})
	return defaultQ
}

type PublicOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type PublicQuestion struct {
	ID      string         `json:"id"`
	Text    string         `json:"text"`
	Type    QuestionType   `json:"type"`
	Options []PublicOption `json:"options"`
}

// Public returns the questions with all weights stripped, ready to send to
// the person taking the test.
func (q *Questionnaire) Public() []PublicQuestion {
	out := make([]PublicQuestion, 0, len(q.questions))
	for _, question := range q.questions {
		pq := PublicQuestion{
			ID:      question.ID,
			Text:    question.Text,
			Type:    question.Type,
			Options: make([]PublicOption, 0, len(question.Options)),
		}
		for _, o := range question.Options {
			pq.Options = append(pq.Options, PublicOption{ID: o.ID, Text: o.Text})
		}
		out = append(out, pq)
	}
	return out
}
