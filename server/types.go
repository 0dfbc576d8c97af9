package server

import (
	"github.com/poiesic/soundbite/core"
)

// Sentinels used in the response field of a rendered decision.
const (
	NoMatchResponse = "none"
	ErrorResponse   = "error"
)

// ProcessRequest is the body of POST /api/process.
type ProcessRequest struct {
	Text   string `json:"text"`
	Method string `json:"method"`
}

// ProcessResponse is a decision rendered for HTTP clients.
type ProcessResponse struct {
	Response       string             `json:"response"`
	Confidence     float64            `json:"confidence"`
	Method         string             `json:"method"`
	Message        string             `json:"message"`
	Status         string             `json:"status"`
	BestCandidate  *string            `json:"best_candidate"`
	AllScores      map[string]float64 `json:"all_scores"`
	DetailedScores any                `json:"detailed_scores"`
	MethodUsed     *string            `json:"method_used"`
	ComparedWith   *ComparisonInfo    `json:"compared_with"`
	Error          *string            `json:"error"`
}

// ComparisonInfo carries the losing score of a max decision.
type ComparisonInfo struct {
	CombinedScore   *float64 `json:"combined_score,omitempty"`
	IndividualScore *float64 `json:"individual_score,omitempty"`
}

// PhraseDetail is the per-clip breakdown of an individual decision.
type PhraseDetail struct {
	IndividualScores []float64 `json:"individual_scores"`
	Descriptions     []string  `json:"descriptions"`
	MaxScore         float64   `json:"max_score"`
}

// HybridDetail is the breakdown of a hybrid decision.
type HybridDetail struct {
	IndividualScores map[string]float64 `json:"individual_scores"`
	CombinedScores   map[string]float64 `json:"combined_scores"`
	Weights          map[string]float64 `json:"weights"`
}

// AudioRequest is the body of POST /api/admin/add-audio.
type AudioRequest struct {
	AudioFile    string   `json:"audio_file"`
	Descriptions []string `json:"descriptions"`
}

// ThresholdRequest is the body of POST /api/admin/update-threshold.
type ThresholdRequest struct {
	Threshold *float64 `json:"threshold"`
}

// StatsResponse is the body of GET /api/stats.
type StatsResponse struct {
	TotalAudios      int      `json:"total_audios"`
	Model            string   `json:"model"`
	CurrentThreshold float64  `json:"current_threshold"`
	AvailableAudios  []string `json:"available_audios"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status            string `json:"status"`
	SystemInitialized bool   `json:"system_initialized"`
}

// RootResponse is the body of GET /.
type RootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

// MessageResponse acknowledges an admin operation.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorDetail is the body of every 4xx and 5xx response.
type ErrorDetail struct {
	Detail string `json:"detail"`
}

// Render converts a decision into its JSON form.
func Render(d *core.Decision) ProcessResponse {
	out := ProcessResponse{
		Confidence: d.Confidence,
		Method:     string(d.Method),
		Message:    d.Message,
		Status:     string(d.Status()),
	}

	switch r := d.Result.(type) {
	case core.Success:
		out.Response = r.ClipID
	case core.NoMatch:
		out.Response = NoMatchResponse
		if r.BestGuess != "" {
			best := r.BestGuess
			out.BestCandidate = &best
		}
	case core.Failure:
		out.Response = ErrorResponse
		reason := r.Reason
		out.Error = &reason
	default:
		out.Response = ErrorResponse
	}

	if d.MethodUsed != "" {
		used := d.MethodUsed
		out.MethodUsed = &used
	}
	if d.ComparedWith != nil {
		out.ComparedWith = &ComparisonInfo{
			CombinedScore:   d.ComparedWith.CombinedScore,
			IndividualScore: d.ComparedWith.IndividualScore,
		}
	}
	if d.Scores != nil {
		out.AllScores = d.Scores.Map()
	}
	if d.Details != nil {
		switch {
		case d.Details.Individual != nil:
			detail := make(map[string]PhraseDetail, len(d.Details.Individual))
			for id, ps := range d.Details.Individual {
				detail[id] = PhraseDetail{
					IndividualScores: ps.Scores,
					Descriptions:     ps.Phrases,
					MaxScore:         ps.MaxScore,
				}
			}
			out.DetailedScores = detail
		case d.Details.Hybrid != nil:
			h := d.Details.Hybrid
			out.DetailedScores = HybridDetail{
				IndividualScores: h.Individual.Map(),
				CombinedScores:   h.Combined.Map(),
				Weights: map[string]float64{
					"individual": h.IndividualWeight,
					"combined":   h.CombinedWeight,
				},
			}
		}
	}
	return out
}
