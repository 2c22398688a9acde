package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"acorn/internal/core"
	"acorn/internal/log"
	"acorn/internal/services"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	JSON(http.StatusOK, s.expenses.Categories(r.Context())).Write(w)
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var c core.CustomCategory
	if err := NewRequestBodyParser(w, r).Decode(&c); err != nil {
		s.badBody(w, r, err)
		return
	}
	c.Name = sanitizeInput(c.Name)
	c.ID = sanitizeInput(c.ID)

	added, err := s.expenses.AddCategory(r.Context(), c)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCategory) {
			BadRequestError("Category id and name are required").Write(w)
			return
		}
		s.writeServiceError(w, r, err, log.OpCreate)
		return
	}
	JSON(http.StatusCreated, added).Write(w)
}

// handleExport streams the export document as a download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.expenses.Export(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, log.OpExport)
		return
	}
	filename := fmt.Sprintf("acorn-expenses-%s.json", time.Now().UTC().Format(core.DateLayout))
	NewJSONResponse().
		Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename)).
		RawJSON(data).
		Write(w)
}

// handleImport merges an export document. A rejected document answers 400
// with the same result shape as a successful import.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := NewRequestBodyParser(w, r).Raw()
	if err != nil {
		s.badBody(w, r, err)
		return
	}

	res := s.expenses.Import(r.Context(), data)
	status := http.StatusOK
	if !res.Success {
		status = http.StatusBadRequest
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Import processed",
		log.FieldOperation, log.OpImport,
		log.FieldSuccess, res.Success,
		log.FieldCount, res.Imported)
	JSON(status, res).Write(w)
}

func (s *Server) handleStorage(w http.ResponseWriter, r *http.Request) {
	JSON(http.StatusOK, s.expenses.Usage(r.Context())).Write(w)
}
