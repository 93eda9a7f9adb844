package chat

import "time"

// Stage is the intake phase a session is in.
type Stage string

const (
	StageGreeting   Stage = "GREETING"
	StageAwaitName  Stage = "AWAIT_NAME"
	StageAwaitAge   Stage = "AWAIT_AGE"
	StageAwaitField Stage = "AWAIT_FIELD"
	StageOpenQA     Stage = "OPEN_QA"
)

// Valid reports whether s is one of the known stages.
func (s Stage) Valid() bool {
	switch s {
	case StageGreeting, StageAwaitName, StageAwaitAge, StageAwaitField, StageOpenQA:
		return true
	default:
		return false
	}
}

// Intake reports whether the stage still collects student details.
func (s Stage) Intake() bool {
	return s != StageOpenQA
}

// Session is a single student's conversation: intake answers plus the
// open Q&A history that feeds the generative provider.
type Session struct {
	ID             string    `json:"session_id"`
	Stage          Stage     `json:"stage"`
	StudentName    string    `json:"student_name,omitempty"`
	StudentAge     int       `json:"student_age,omitempty"`
	AreaOfInterest Field     `json:"area_of_interest,omitempty"`
	LastQuery      string    `json:"last_query,omitempty"`
	GuidanceType   Category  `json:"guidance_type,omitempty"`
	History        []Turn    `json:"history,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewSession returns a session at the start of intake.
func NewSession(id string, now time.Time) Session {
	return Session{
		ID:        id,
		Stage:     StageGreeting,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a copy that shares no history backing array with s.
func (s Session) Clone() Session {
	out := s
	if s.History != nil {
		out.History = append([]Turn(nil), s.History...)
	}
	return out
}

// GuidanceRecord extracts the analytics row for the session. ok is false
// until every field has been collected.
func (s Session) GuidanceRecord() (GuidanceRecord, bool) {
	rec := GuidanceRecord{
		SessionID:      s.ID,
		StudentName:    s.StudentName,
		StudentAge:     s.StudentAge,
		AreaOfInterest: s.AreaOfInterest,
		StudentQuery:   s.LastQuery,
		GuidanceType:   s.GuidanceType,
		CreatedAt:      s.UpdatedAt,
	}
	ok := rec.StudentName != "" && rec.StudentAge > 0 && rec.AreaOfInterest != "" &&
		rec.StudentQuery != "" && rec.GuidanceType != ""
	return rec, ok
}

// GuidanceRecord is the analytics row written once a question was answered.
type GuidanceRecord struct {
	SessionID      string    `json:"session_id"`
	StudentName    string    `json:"student_name"`
	StudentAge     int       `json:"student_age"`
	AreaOfInterest Field     `json:"area_of_interest"`
	StudentQuery   string    `json:"student_query"`
	GuidanceType   Category  `json:"guidance_type"`
	CreatedAt      time.Time `json:"created_at"`
}
