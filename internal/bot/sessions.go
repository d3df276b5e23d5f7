package bot

import (
	"sync"

	"github.com/gratefultolord/community_bot/internal/parse"
)

type Flow string

const (
	FlowNewProfile  Flow = "new_profile"
	FlowEditProfile Flow = "edit_profile"
	FlowReport      Flow = "report"
	FlowAFK         Flow = "afk"
	FlowAdminApp    Flow = "admin_application"
)

type Step string

const (
	StepProfileText    Step = "profile_text"
	StepProfileMissing Step = "profile_missing"
	StepProfileConfirm Step = "profile_confirm"
	StepEditNote       Step = "edit_note"
	StepEditConfirm    Step = "edit_confirm"
	StepReportReason   Step = "report_reason"
	StepAFKDays        Step = "afk_days"
	StepAFKReason      Step = "afk_reason"
	StepAppText        Step = "application_text"
)

// Session is the per-user conversation state. At most one flow is active per
// user; starting a new flow replaces whatever was in progress.
type Session struct {
	Flow Flow
	Step Step

	Draft   parse.Fields
	RawText string
	Missing []string

	EditTarget string
	EditNote   string

	ReportCategory string
	AFKDays        int
}

type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[int64]*Session)}
}

func (s *SessionStore) Get(userID int64) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	return sess, ok
}

func (s *SessionStore) Set(userID int64, sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = sess
}

func (s *SessionStore) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}
