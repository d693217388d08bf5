package models

import (
	"encoding/json"
	"fmt"
)

// QuestionKind tags the three exercise item variants.
type QuestionKind string

const (
	KindMultipleChoice QuestionKind = "multiple-choice"
	KindText           QuestionKind = "text"
	KindWordOrdering   QuestionKind = "word-ordering"
)

// QuestionBase carries the fields shared by every question variant.
type QuestionBase struct {
	ID            string `json:"id"`
	Prompt        string `json:"question"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
	Complexity    int    `json:"complexity"`
	Translation   string `json:"translation,omitempty"`
}

// Question is the tagged variant over the three item kinds. Each concrete
// type carries only the fields its kind needs; graders dispatch on the
// concrete type so a new kind cannot be added without updating them.
type Question interface {
	Kind() QuestionKind
	Base() QuestionBase
}

// MultipleChoiceQuestion offers a fixed option list, one of which is correct.
type MultipleChoiceQuestion struct {
	QuestionBase
	Options []string `json:"options"`
}

func (q MultipleChoiceQuestion) Kind() QuestionKind { return KindMultipleChoice }
func (q MultipleChoiceQuestion) Base() QuestionBase { return q.QuestionBase }

// TextQuestion expects a free-typed answer.
type TextQuestion struct {
	QuestionBase
}

func (q TextQuestion) Kind() QuestionKind { return KindText }
func (q TextQuestion) Base() QuestionBase { return q.QuestionBase }

// WordOrderingQuestion presents a shuffled token pool the learner arranges
// into a sentence. Tokens are identified by pool position, so duplicate words
// can appear and be placed independently.
type WordOrderingQuestion struct {
	QuestionBase
	Tokens []string `json:"options"`
}

func (q WordOrderingQuestion) Kind() QuestionKind { return KindWordOrdering }
func (q WordOrderingQuestion) Base() QuestionBase { return q.QuestionBase }

// questionEnvelope is the wire form for a Question of any kind.
type questionEnvelope struct {
	Type QuestionKind `json:"type"`
	QuestionBase
	Options []string `json:"options,omitempty"`
}

// EncodeQuestions serializes a question set for durable storage.
func EncodeQuestions(questions []Question) ([]byte, error) {
	envelopes := make([]questionEnvelope, len(questions))
	for i, q := range questions {
		env := questionEnvelope{Type: q.Kind(), QuestionBase: q.Base()}
		switch v := q.(type) {
		case MultipleChoiceQuestion:
			env.Options = v.Options
		case WordOrderingQuestion:
			env.Options = v.Tokens
		case TextQuestion:
		default:
			return nil, fmt.Errorf("unknown question kind %q", q.Kind())
		}
		envelopes[i] = env
	}
	return json.Marshal(envelopes)
}

// DecodeQuestions reverses EncodeQuestions.
func DecodeQuestions(data []byte) ([]Question, error) {
	var envelopes []questionEnvelope
	if err := json.Unmarshal(data, &envelopes); err != nil {
		return nil, err
	}

	questions := make([]Question, 0, len(envelopes))
	for _, env := range envelopes {
		q, err := questionFromEnvelope(env)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func questionFromEnvelope(env questionEnvelope) (Question, error) {
	switch env.Type {
	case KindMultipleChoice:
		if len(env.Options) == 0 {
			return nil, fmt.Errorf("multiple-choice question %q has no options", env.ID)
		}
		return MultipleChoiceQuestion{QuestionBase: env.QuestionBase, Options: env.Options}, nil
	case KindText:
		return TextQuestion{QuestionBase: env.QuestionBase}, nil
	case KindWordOrdering:
		if len(env.Options) == 0 {
			return nil, fmt.Errorf("word-ordering question %q has no tokens", env.ID)
		}
		return WordOrderingQuestion{QuestionBase: env.QuestionBase, Tokens: env.Options}, nil
	default:
		return nil, fmt.Errorf("unknown question type %q", env.Type)
	}
}
