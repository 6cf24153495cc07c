package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/coolbeans/convictions/pkg/iucr"
	"github.com/coolbeans/convictions/pkg/statute"
)

// Error codes returned in ErrorResponse.
const (
	ErrMissingStatute  = "missing_statute"
	ErrFormat          = "format_error"
	ErrILCSLookup      = "ilcs_lookup_error"
	ErrIUCRLookup      = "iucr_lookup_error"
	ErrInternal        = "internal_error"
	ErrUnknownIUCRCode = "unknown_iucr_code"
)

// ClassifyResponse is the body of a successful classification.
type ClassifyResponse struct {
	Statute   string            `json:"statute"`
	Repaired  string            `json:"repaired"`
	Primary   string            `json:"primary"`
	Modifier  *statute.Modifier `json:"modifier"`
	Citation  string            `json:"citation"`
	Records   []iucr.Offense    `json:"records"`
	Ambiguous bool              `json:"ambiguous"`
}

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Statute   string `json:"statute,omitempty"`
	Chapter   string `json:"chapter,omitempty"`
	Paragraph string `json:"paragraph,omitempty"`
	Citation  string `json:"citation,omitempty"`
}

// CodeCategoriesResponse lists the category groups containing a code.
type CodeCategoriesResponse struct {
	Code       string        `json:"code"`
	Offense    *iucr.Offense `json:"offense,omitempty"`
	Categories []string      `json:"categories"`
}

func (server *Server) classify(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("statute")
	if raw == "" {
		server.writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   ErrMissingStatute,
			Message: "statute query parameter is required",
		})
		return
	}

	resolution, err := server.resolver.Resolve(raw)
	if err != nil {
		status, body := server.classifyError(raw, err)
		server.writeJSON(w, status, body)
		return
	}

	records := resolution.Offenses
	if records == nil {
		records = []iucr.Offense{}
	}
	server.writeJSON(w, http.StatusOK, ClassifyResponse{
		Statute:   raw,
		Repaired:  resolution.Repaired,
		Primary:   resolution.Primary,
		Modifier:  resolution.Modifier,
		Citation:  resolution.Citation.String(),
		Records:   records,
		Ambiguous: resolution.Ambiguous(),
	})
}

func (server *Server) classifyError(raw string, err error) (int, ErrorResponse) {
	body := ErrorResponse{Message: err.Error(), Statute: raw}

	var (
		formatErr *statute.FormatError
		ilcsErr   *statute.ILCSLookupError
		iucrErr   *statute.IUCRLookupError
	)
	switch {
	case errors.As(err, &formatErr):
		body.Error = ErrFormat
		return http.StatusUnprocessableEntity, body
	case errors.As(err, &ilcsErr):
		body.Error = ErrILCSLookup
		body.Chapter = ilcsErr.Chapter
		body.Paragraph = ilcsErr.Paragraph
		return http.StatusNotFound, body
	case errors.As(err, &iucrErr):
		body.Error = ErrIUCRLookup
		body.Citation = iucrErr.Citation.String()
		return http.StatusNotFound, body
	default:
		server.logger.Error("Unable to classify statute", zap.String("statute", raw), zap.Error(err))
		return http.StatusInternalServerError, ErrorResponse{Error: ErrInternal, Message: "internal error", Statute: raw}
	}
}

func (server *Server) categories(w http.ResponseWriter, r *http.Request) {
	server.writeJSON(w, http.StatusOK, server.registry.Groups())
}

func (server *Server) categoriesForCode(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	response := CodeCategoriesResponse{
		Code:       code,
		Categories: server.registry.GroupsFor(code),
	}
	if offense, ok := server.offenses.LookupCode(code); ok {
		response.Offense = &offense
	}

	if response.Offense == nil && len(response.Categories) == 0 {
		server.writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error:   ErrUnknownIUCRCode,
			Message: "no offense or category for IUCR code " + code,
		})
		return
	}
	server.writeJSON(w, http.StatusOK, response)
}

func (server *Server) healthz(w http.ResponseWriter, r *http.Request) {
	server.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (server *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		server.logger.Debug("Unable to write response", zap.Int("status", status), zap.Error(err))
	}
}
