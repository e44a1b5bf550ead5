package http

import (
	"errors"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

type apiValidationError struct {
	Error string `json:"error"`
	Field string `json:"field"`
}

func (s *Server) handleAPIListExpenses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Search(filterFromQuery(r.URL.Query())))
}

func (s *Server) handleAPIGetExpense(w http.ResponseWriter, r *http.Request) {
	e, ok := s.svc.Get(r.PathValue("id"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, core.ErrNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleAPICreateExpense(w http.ResponseWriter, r *http.Request) {
	in, err := parseExpenseInput(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	e, err := s.svc.Create(r.Context(), in)
	if err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/expenses/"+e.ID)
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleAPIUpdateExpense(w http.ResponseWriter, r *http.Request) {
	in, err := parseExpenseInput(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	e, err := s.svc.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// handleAPIDeleteExpense answers 204 whether or not the id existed.
func (s *Server) handleAPIDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if _, err := s.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Summary())
}

func (s *Server) writeAPIError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, apiValidationError{Error: verr.Err.Error(), Field: verr.Field})
	case errors.Is(err, core.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, core.ErrNotFound.Error())
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "API request failed", log.FieldError, err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}
