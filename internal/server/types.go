package server

import (
	"github.com/larachristiea/bumerangue/internal/model"
)

// ParseResponse is the response for the parse endpoint.
type ParseResponse struct {
	Invoice *model.Invoice `json:"invoice"`
}

// ClassifyResponse is the response for the classify endpoint.
type ClassifyResponse struct {
	Invoice            *model.Invoice `json:"invoice"`
	SinglePhaseRevenue string         `json:"single_phase_revenue"`
	RegularRevenue     string         `json:"regular_revenue"`
}

// ProcessRequest asks for a full directory run.
type ProcessRequest struct {
	Dir    string `json:"dir" binding:"required"`
	Period string `json:"period" binding:"required"`
	Target string `json:"target,omitempty"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
