package session

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"studyquest/internal/models"
)

var (
	// ErrInvalidResponseKind is returned when the submitted response shape
	// does not match the current question's declared kind, or the response
	// is empty. Callers treat it as a no-op, not a crash.
	ErrInvalidResponseKind = errors.New("response does not match question kind")

	// ErrNotAwaitingAnswer is returned by SubmitAnswer outside the
	// awaiting-answer phase.
	ErrNotAwaitingAnswer = errors.New("no answer expected in current phase")

	// ErrNotAnswered is returned by Advance before the current question has
	// been answered.
	ErrNotAnswered = errors.New("current question has not been answered")

	// ErrSessionComplete is returned when operating on a finished session.
	ErrSessionComplete = errors.New("session already complete")
)

// Phase is the state machine's position for the current question.
type Phase int

const (
	PhaseAwaitingAnswer Phase = iota
	PhaseAnswered
	PhaseComplete
)

// Response is the learner's answer to the current question. The concrete
// type must match the question kind.
type Response interface {
	isResponse()
}

// ChoiceResponse selects one option of a multiple-choice question.
type ChoiceResponse struct {
	Option string
}

// TextResponse is a free-typed answer.
type TextResponse struct {
	Text string
}

// OrderingResponse submits the current token placement of a word-ordering
// question. The placement itself is built up via ToggleToken.
type OrderingResponse struct{}

func (ChoiceResponse) isResponse()   {}
func (TextResponse) isResponse()     {}
func (OrderingResponse) isResponse() {}

// Outcome describes the result of a graded answer. CorrectAnswer and
// Explanation are populated so an incorrect answer can be explained.
type Outcome struct {
	Correct       bool    `json:"correct"`
	EarnedCredit  float64 `json:"earned_credit"`
	CorrectAnswer string  `json:"correct_answer"`
	Explanation   string  `json:"explanation"`
}

// Machine runs one exercise attempt over a fixed question set. Credits and
// the correct counter only ever grow within a session; resume values are
// applied at construction and never again.
type Machine struct {
	questions       []models.Question
	worksheetImages []string
	worksheetID     string

	index        int
	correctCount int
	totalCredits float64
	phase        Phase
	lastOutcome  *Outcome

	// word-ordering transient state, reset on every advance
	placement []int  // pool positions in placement order
	placed    []bool // by pool position
}

// New builds a machine seeded from progress. A fresh session passes a
// zero-value SessionProgress; a resumed one passes the mirrored snapshot.
func New(questions []models.Question, progress models.SessionProgress) (*Machine, error) {
	if len(questions) == 0 {
		return nil, errors.New("question set is empty")
	}
	if progress.CurrentIndex < 0 || progress.CurrentIndex >= len(questions) {
		return nil, fmt.Errorf("resume index %d out of range for %d questions", progress.CurrentIndex, len(questions))
	}

	m := &Machine{
		questions:       questions,
		worksheetImages: progress.WorksheetImages,
		worksheetID:     progress.WorksheetID,
		index:           progress.CurrentIndex,
		correctCount:    progress.CorrectCount,
		totalCredits:    progress.TotalCredits,
		phase:           PhaseAwaitingAnswer,
	}
	m.resetTransient()
	return m, nil
}

// Current returns the question under grading plus its position.
func (m *Machine) Current() (models.Question, int, int) {
	return m.questions[m.index], m.index, len(m.questions)
}

// Phase returns the machine's current phase.
func (m *Machine) Phase() Phase { return m.phase }

// CorrectCount returns the running number of correctly answered questions.
func (m *Machine) CorrectCount() int { return m.correctCount }

// TotalCredits returns the running credit total for this session.
func (m *Machine) TotalCredits() float64 { return m.totalCredits }

// LastOutcome returns the grading result of the current question, or nil
// before it has been answered.
func (m *Machine) LastOutcome() *Outcome { return m.lastOutcome }

// SubmitAnswer grades the response against the current question. The machine
// transitions to the answered phase; a correct answer earns
// complexity * 0.5 credits.
func (m *Machine) SubmitAnswer(resp Response) (Outcome, error) {
	switch m.phase {
	case PhaseComplete:
		return Outcome{}, ErrSessionComplete
	case PhaseAnswered:
		return Outcome{}, ErrNotAwaitingAnswer
	}

	candidate, err := m.candidateText(resp)
	if err != nil {
		return Outcome{}, err
	}

	q := m.questions[m.index]
	base := q.Base()
	outcome := Outcome{
		CorrectAnswer: base.CorrectAnswer,
		Explanation:   base.Explanation,
	}

	if Normalize(candidate) == Normalize(base.CorrectAnswer) {
		outcome.Correct = true
		outcome.EarnedCredit = float64(base.Complexity) * 0.5
		m.correctCount++
		m.totalCredits += outcome.EarnedCredit
	}

	m.phase = PhaseAnswered
	m.lastOutcome = &outcome
	return outcome, nil
}

// candidateText validates the response shape against the question kind and
// returns the text to grade.
func (m *Machine) candidateText(resp Response) (string, error) {
	switch q := m.questions[m.index].(type) {
	case models.MultipleChoiceQuestion:
		choice, ok := resp.(ChoiceResponse)
		if !ok {
			return "", ErrInvalidResponseKind
		}
		for _, opt := range q.Options {
			if opt == choice.Option {
				return choice.Option, nil
			}
		}
		return "", ErrInvalidResponseKind
	case models.TextQuestion:
		text, ok := resp.(TextResponse)
		if !ok || strings.TrimSpace(text.Text) == "" {
			return "", ErrInvalidResponseKind
		}
		return text.Text, nil
	case models.WordOrderingQuestion:
		if _, ok := resp.(OrderingResponse); !ok {
			return "", ErrInvalidResponseKind
		}
		// the full pool must be consumed, each token exactly once
		if len(m.placement) != len(q.Tokens) {
			return "", ErrInvalidResponseKind
		}
		words := make([]string, len(m.placement))
		for i, pos := range m.placement {
			words[i] = q.Tokens[pos]
		}
		return strings.Join(words, " "), nil
	default:
		return "", fmt.Errorf("unhandled question kind %q", m.questions[m.index].Kind())
	}
}

// Advance moves past an answered question. On the last question it completes
// the session and returns the completion record; otherwise it resets
// per-question transient state and awaits the next answer.
func (m *Machine) Advance() (*models.CompletionRecord, error) {
	switch m.phase {
	case PhaseComplete:
		return nil, ErrSessionComplete
	case PhaseAwaitingAnswer:
		return nil, ErrNotAnswered
	}

	if m.index == len(m.questions)-1 {
		m.phase = PhaseComplete
		return &models.CompletionRecord{
			CorrectCount: m.correctCount,
			TotalCredits: m.totalCredits,
			ItemCount:    len(m.questions),
		}, nil
	}

	m.index++
	m.phase = PhaseAwaitingAnswer
	m.lastOutcome = nil
	m.resetTransient()
	return nil, nil
}

// ToggleToken places an unplaced token at the end of the placement sequence,
// or removes it if already placed. Tokens are referenced by pool position so
// duplicate words toggle independently. A no-op once the question is
// answered.
func (m *Machine) ToggleToken(pos int) error {
	if m.phase != PhaseAwaitingAnswer {
		return nil
	}
	q, ok := m.questions[m.index].(models.WordOrderingQuestion)
	if !ok {
		return ErrInvalidResponseKind
	}
	if pos < 0 || pos >= len(q.Tokens) {
		return fmt.Errorf("token position %d out of range", pos)
	}

	if m.placed[pos] {
		for i, placedPos := range m.placement {
			if placedPos == pos {
				m.placement = append(m.placement[:i], m.placement[i+1:]...)
				break
			}
		}
		m.placed[pos] = false
		return nil
	}

	m.placement = append(m.placement, pos)
	m.placed[pos] = true
	return nil
}

// ResetPlacement clears the token placement. A no-op once answered.
func (m *Machine) ResetPlacement() {
	if m.phase != PhaseAwaitingAnswer {
		return
	}
	m.resetTransient()
}

// Placement returns the placed tokens in placement order.
func (m *Machine) Placement() []string {
	q, ok := m.questions[m.index].(models.WordOrderingQuestion)
	if !ok {
		return nil
	}
	words := make([]string, len(m.placement))
	for i, pos := range m.placement {
		words[i] = q.Tokens[pos]
	}
	return words
}

// Snapshot produces the durable progress mirror for this session.
func (m *Machine) Snapshot() models.SessionProgress {
	return models.SessionProgress{
		CurrentIndex:    m.index,
		CorrectCount:    m.correctCount,
		TotalCredits:    m.totalCredits,
		WorksheetImages: m.worksheetImages,
		WorksheetID:     m.worksheetID,
	}
}

// WorksheetID returns the id of the worksheet this session was built from,
// if any.
func (m *Machine) WorksheetID() string { return m.worksheetID }

func (m *Machine) resetTransient() {
	m.placement = nil
	if q, ok := m.questions[m.index].(models.WordOrderingQuestion); ok {
		m.placed = make([]bool, len(q.Tokens))
	} else {
		m.placed = nil
	}
}

// Normalize prepares a string for grading: lower-cased, trimmed, with one
// trailing punctuation rune from ".,!?;" stripped.
func Normalize(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return s
	}
	last, size := utf8.DecodeLastRuneInString(s)
	if strings.ContainsRune(".,!?;", last) {
		s = s[:len(s)-size]
	}
	return s
}
