package service

import (
	"errors"
	"fmt"
	stdsync "sync"

	"studyquest/internal/models"
	"studyquest/internal/repository"
	"studyquest/internal/session"
)

// ErrNoActiveSession is returned when a session operation arrives with no
// exercise attempt in flight.
var ErrNoActiveSession = errors.New("no active session")

// QuestionView is the presentation shape of the current question. The
// reference answer and explanation are only exposed through the grading
// outcome, after the question has been answered.
type QuestionView struct {
	ID          string              `json:"id"`
	Kind        models.QuestionKind `json:"type"`
	Prompt      string              `json:"question"`
	Options     []string            `json:"options,omitempty"`
	Complexity  int                 `json:"complexity"`
	Translation string              `json:"translation,omitempty"`
}

// SessionView is the full state handed to the UI shell after any session
// operation.
type SessionView struct {
	Question     QuestionView     `json:"question"`
	Index        int              `json:"index"`
	Total        int              `json:"total"`
	CorrectCount int              `json:"correct_count"`
	TotalCredits float64          `json:"total_credits"`
	Answered     bool             `json:"answered"`
	Placement    []string         `json:"placement,omitempty"`
	Outcome      *session.Outcome `json:"outcome,omitempty"`
}

// CompletionView reports a finished session.
type CompletionView struct {
	Record models.CompletionRecord `json:"record"`
}

// SessionService owns the single in-flight exercise attempt. Every state
// transition is mirrored to the local store so an interrupted session can
// resume after a restart.
type SessionService struct {
	repo    *repository.StateRepository
	rewards *RewardsService

	mu      stdsync.Mutex
	machine *session.Machine
	subject models.Subject
}

// NewSessionService creates a new session service
func NewSessionService(repo *repository.StateRepository, rewards *RewardsService) *SessionService {
	return &SessionService{repo: repo, rewards: rewards}
}

// Start begins a fresh attempt over a generated question set, replacing any
// suspended session. worksheetID may be empty for camera-direct sessions.
func (s *SessionService) Start(questions []models.Question, images []string, worksheetID string, subject models.Subject) (*SessionView, error) {
	progress := models.SessionProgress{
		WorksheetImages: images,
		WorksheetID:     worksheetID,
		Subject:         subject,
	}

	machine, err := session.New(questions, progress)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SaveCurrentQuestions(questions); err != nil {
		return nil, fmt.Errorf("failed to mirror question set: %w", err)
	}
	if err := s.saveSnapshot(machine, subject); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.machine = machine
	s.subject = subject
	s.mu.Unlock()

	return s.View()
}

// Resume rebuilds a suspended session from the mirrored snapshot. It returns
// ErrNoActiveSession when nothing was suspended.
func (s *SessionService) Resume() (*SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.machine != nil {
		return s.viewLocked()
	}

	progress, err := s.repo.LoadSessionProgress()
	if err != nil {
		return nil, err
	}
	questions, err := s.repo.LoadCurrentQuestions()
	if err != nil {
		return nil, err
	}
	if progress == nil || len(questions) == 0 {
		return nil, ErrNoActiveSession
	}

	machine, err := session.New(questions, *progress)
	if err != nil {
		return nil, fmt.Errorf("failed to resume session: %w", err)
	}

	s.machine = machine
	s.subject = progress.Subject
	return s.viewLocked()
}

// View returns the current session state.
func (s *SessionService) View() (*SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *SessionService) viewLocked() (*SessionView, error) {
	if s.machine == nil {
		return nil, ErrNoActiveSession
	}

	q, index, total := s.machine.Current()
	view := &SessionView{
		Question:     questionView(q),
		Index:        index,
		Total:        total,
		CorrectCount: s.machine.CorrectCount(),
		TotalCredits: s.machine.TotalCredits(),
		Answered:     s.machine.Phase() == session.PhaseAnswered,
		Placement:    s.machine.Placement(),
		Outcome:      s.machine.LastOutcome(),
	}
	return view, nil
}

// Submit grades an answer and mirrors the updated snapshot.
func (s *SessionService) Submit(resp session.Response) (*SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.machine == nil {
		return nil, ErrNoActiveSession
	}
	if _, err := s.machine.SubmitAnswer(resp); err != nil {
		return nil, err
	}
	if err := s.saveSnapshot(s.machine, s.subject); err != nil {
		return nil, err
	}
	return s.viewLocked()
}

// Advance moves to the next question, or completes the session: the
// completion record is folded into Stats and the mirrored session state is
// destroyed.
func (s *SessionService) Advance() (*SessionView, *CompletionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.machine == nil {
		return nil, nil, ErrNoActiveSession
	}

	record, err := s.machine.Advance()
	if err != nil {
		return nil, nil, err
	}

	if record != nil {
		worksheetID := s.machine.WorksheetID()
		if err := s.rewards.ApplyCompletion(*record, s.subject, worksheetID); err != nil {
			return nil, nil, err
		}
		if err := s.repo.ClearSession(); err != nil {
			return nil, nil, err
		}
		s.machine = nil
		return nil, &CompletionView{Record: *record}, nil
	}

	if err := s.saveSnapshot(s.machine, s.subject); err != nil {
		return nil, nil, err
	}
	view, err := s.viewLocked()
	return view, nil, err
}

// ToggleToken places or removes a word-ordering token by pool position.
func (s *SessionService) ToggleToken(pos int) (*SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.machine == nil {
		return nil, ErrNoActiveSession
	}
	if err := s.machine.ToggleToken(pos); err != nil {
		return nil, err
	}
	return s.viewLocked()
}

// ResetPlacement clears the word-ordering placement.
func (s *SessionService) ResetPlacement() (*SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.machine == nil {
		return nil, ErrNoActiveSession
	}
	s.machine.ResetPlacement()
	return s.viewLocked()
}

// Exit abandons the attempt and destroys the mirrored session state.
// Credits already counted in-session are discarded with it; only completion
// reaches the ledger.
func (s *SessionService) Exit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.machine == nil {
		return ErrNoActiveSession
	}
	if err := s.repo.ClearSession(); err != nil {
		return err
	}
	s.machine = nil
	return nil
}

func (s *SessionService) saveSnapshot(machine *session.Machine, subject models.Subject) error {
	snapshot := machine.Snapshot()
	snapshot.Subject = subject
	if err := s.repo.SaveSessionProgress(snapshot); err != nil {
		return fmt.Errorf("failed to mirror session progress: %w", err)
	}
	return nil
}

func questionView(q models.Question) QuestionView {
	base := q.Base()
	view := QuestionView{
		ID:          base.ID,
		Kind:        q.Kind(),
		Prompt:      base.Prompt,
		Complexity:  base.Complexity,
		Translation: base.Translation,
	}
	switch v := q.(type) {
	case models.MultipleChoiceQuestion:
		view.Options = v.Options
	case models.WordOrderingQuestion:
		view.Options = v.Tokens
	}
	return view
}
