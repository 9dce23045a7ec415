package models

import "time"

const Greeting = "👋 Hi! I've analyzed the claim. What would you like to know?"

type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// AssessmentSession is the per-user context of one analysis. A new assessment
// replaces it wholesale.
type AssessmentSession struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Model             string          `json:"model"`
	Submission        *RawSubmission  `json:"submission,omitempty"`
	Record            *DisplayRecord  `json:"record,omitempty"`
	Vector            *FeatureVector  `json:"vector,omitempty"`
	Probability       float64         `json:"probability"`
	PredictionWarning string          `json:"prediction_warning,omitempty"`
	Drivers           []RiskDriver    `json:"drivers"`
	Verdict           Verdict         `json:"verdict"`
	Messages          []ChatMessage   `json:"messages"`
	LastReport        *ReportArtifact `json:"last_report,omitempty"`
}

func NewAssessmentSession(id string, now time.Time) *AssessmentSession {
	return &AssessmentSession{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
		Drivers:   []RiskDriver{},
		Messages:  []ChatMessage{{Role: ChatRoleAssistant, Content: Greeting}},
	}
}

func (s *AssessmentSession) HasAssessment() bool {
	return s != nil && s.Record != nil && s.Vector != nil
}

func (s *AssessmentSession) AppendExchange(question, answer string) {
	s.Messages = append(s.Messages,
		ChatMessage{Role: ChatRoleUser, Content: question},
		ChatMessage{Role: ChatRoleAssistant, Content: answer},
	)
}

// ReportArtifact describes a generated PDF report.
type ReportArtifact struct {
	ReportID    string    `json:"report_id"`
	FileName    string    `json:"file_name"`
	Path        string    `json:"-"`
	GeneratedAt time.Time `json:"generated_at"`
	ArchiveURL  string    `json:"archive_url,omitempty"`
}
