package models

type AssessmentResponse struct {
	SessionID         string             `json:"session_id"`
	Model             string             `json:"model"`
	Probability       float64            `json:"probability"`
	PredictionWarning string             `json:"prediction_warning,omitempty"`
	Verdict           Verdict            `json:"verdict"`
	RiskLabel         string             `json:"risk_label"`
	RiskColor         string             `json:"risk_color"`
	Drivers           []RiskDriver       `json:"drivers"`
	Record            *DisplayRecord     `json:"record"`
	Fallbacks         []EncodingFallback `json:"encoding_fallbacks,omitempty"`
	Messages          []ChatMessage      `json:"messages"`
}

func NewAssessmentResponse(s *AssessmentSession) AssessmentResponse {
	resp := AssessmentResponse{
		SessionID:         s.ID,
		Model:             s.Model,
		Probability:       s.Probability,
		PredictionWarning: s.PredictionWarning,
		Verdict:           s.Verdict,
		RiskLabel:         s.Verdict.Label(),
		RiskColor:         s.Verdict.Color(),
		Drivers:           s.Drivers,
		Record:            s.Record,
		Messages:          s.Messages,
	}
	if s.Vector != nil {
		resp.Fallbacks = s.Vector.Fallbacks
	}
	return resp
}

type AnswerResponse struct {
	Question string        `json:"question"`
	Answer   string        `json:"answer"`
	Messages []ChatMessage `json:"messages,omitempty"`
}

type ModelsResponse struct {
	Models  []string `json:"models"`
	Default string   `json:"default"`
}
