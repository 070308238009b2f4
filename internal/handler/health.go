package handler

import (
	"context"
	"net/http"
)

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// Health handles GET /healthz.
// It returns HTTP 200 with {"status":"ok"} when the server is running.
func (s *Server) Health(_ context.Context) (Response, error) {
	return JSONResponse{Status: http.StatusOK, Body: HealthResponse{Status: "ok"}}, nil
}
