package api

import "github.com/wflores9/StudioBot.ai/internal/types"

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

// DetectRequest fields left out fall back to the server's detection params.
type DetectRequest struct {
	Sentences  []types.Sentence `json:"sentences"`
	MinClipSec *int             `json:"min_clip_sec,omitempty"`
	MaxClipSec *int             `json:"max_clip_sec,omitempty"`
	TopN       *int             `json:"top_n,omitempty"`
}

type DetectResponse struct {
	Candidates []types.ClipCandidate `json:"candidates"`
}

type ClipsResponse struct {
	VideoID string       `json:"video_id"`
	Clips   []types.Clip `json:"clips"`
}

type ApprovalRequest struct {
	Approved *bool  `json:"approved"`
	Notes    string `json:"notes"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
