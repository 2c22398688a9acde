package http

import (
	"errors"
	"net/http"

	"acorn/internal/core"
	"acorn/internal/log"
	"acorn/internal/query"
	"acorn/internal/services"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	opts := ParseListOptions(r.URL.Query())
	JSON(http.StatusOK, s.expenses.List(r.Context(), opts)).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	d, err := NewRequestBodyParser(w, r).Draft()
	if err != nil {
		s.badBody(w, r, err)
		return
	}

	res, err := s.expenses.Create(r.Context(), d)
	if err != nil {
		s.writeServiceError(w, r, err, log.OpCreate)
		return
	}
	JSON(http.StatusCreated, res).Write(w)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	rec, err := s.expenses.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err, log.OpRead)
		return
	}
	JSON(http.StatusOK, rec).Write(w)
}

// handleReplaceExpense implements PUT: every mutable field is overwritten.
func (s *Server) handleReplaceExpense(w http.ResponseWriter, r *http.Request) {
	d, err := NewRequestBodyParser(w, r).Draft()
	if err != nil {
		s.badBody(w, r, err)
		return
	}

	rec, err := s.expenses.Replace(r.Context(), r.PathValue("id"), d)
	if err != nil {
		s.writeServiceError(w, r, err, log.OpUpdate)
		return
	}
	JSON(http.StatusOK, rec).Write(w)
}

// handlePatchExpense implements PATCH: only the fields present change.
func (s *Server) handlePatchExpense(w http.ResponseWriter, r *http.Request) {
	p, err := NewRequestBodyParser(w, r).Patch()
	if err != nil {
		s.badBody(w, r, err)
		return
	}

	rec, err := s.expenses.Patch(r.Context(), r.PathValue("id"), p)
	if err != nil {
		s.writeServiceError(w, r, err, log.OpUpdate)
		return
	}
	JSON(http.StatusOK, rec).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.expenses.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeServiceError(w, r, err, log.OpDelete)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearExpenses(w http.ResponseWriter, r *http.Request) {
	if err := s.expenses.Clear(r.Context()); err != nil {
		s.writeServiceError(w, r, err, log.OpClear)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	p := query.ParsePeriod(sanitizeInput(r.URL.Query().Get("period")))
	JSON(http.StatusOK, s.expenses.Summary(r.Context(), p)).Write(w)
}

func (s *Server) handleDueRecurring(w http.ResponseWriter, r *http.Request) {
	due := s.expenses.Due(r.Context())
	if due == nil {
		due = []core.ExpenseRecord{}
	}
	JSON(http.StatusOK, due).Write(w)
}

func (s *Server) badBody(w http.ResponseWriter, r *http.Request, err error) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Invalid request body",
		log.FieldError, err,
		log.FieldPath, r.URL.Path)
	BadRequestError("Invalid request body").Write(w)
}

// writeServiceError maps service errors to responses. Validation problems
// and missing records are client errors; everything else is logged as a
// server failure.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, op string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		ValidationError(verr.Errors).Write(w)
	case errors.Is(err, services.ErrNotFound):
		NotFoundError("Expense not found").Write(w)
	case errors.Is(err, services.ErrInvalidCategory):
		BadRequestError(err.Error()).Write(w)
	default:
		log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(),
			"Expense operation failed", err, log.ComponentExpense, op,
			log.NewFields().WithExpenseID(r.PathValue("id")))
		InternalServerError("Internal server error").Write(w)
	}
}
