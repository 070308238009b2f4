package handler

import (
	"errors"
	"net/http"

	"github.com/pkordes/bookmarks/internal/domain"
)

// ErrorResponse is the JSON body of a failed JSON request.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail names the failure with a machine-readable code.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestBody returns an ErrorResponse for a bad request rejected before
// reaching the service layer (e.g. an unsupported export format).
func requestBody(message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "validation_error", Message: message}}
}

// errorResponse maps an error returned by a handler to the page shown for it.
// Not-found errors get the 404 view; anything else is logged and gets the
// 500 view.
func (s *Server) errorResponse(r *http.Request, err error) Response {
	if errors.Is(err, domain.ErrNotFound) {
		return notFoundResponse()
	}
	s.log.ErrorContext(r.Context(), "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	return RenderResponse{Template: ViewError, Status: http.StatusInternalServerError}
}

// ErrorPageData is rendered by the bad request view.
type ErrorPageData struct {
	Title   string
	Message string
}

// badRequestPage answers an HTML request whose parameters or body could not
// be read.
func badRequestPage(status int, title, message string) Response {
	return RenderResponse{
		Template: ViewBadRequest,
		Status:   status,
		Data:     ErrorPageData{Title: title, Message: message},
	}
}

func notFoundResponse() Response {
	return RenderResponse{Template: ViewNotFound, Status: http.StatusNotFound}
}
