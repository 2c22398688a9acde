package http

import (
	"net/http"
	"strings"
	"time"

	"acorn/internal/catalog"
	"acorn/internal/core"
	"acorn/internal/log"
	"acorn/internal/query"
)

// handleCostOfLiving answers GET /api/cost-of-living?location=City, ST.
func (s *Server) handleCostOfLiving(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	ctx := r.Context()
	location := sanitizeInput(r.URL.Query().Get("location"))
	if location == "" {
		BadRequestError("Location parameter is required").Write(w)
		return
	}

	if s.lookupDelay > 0 {
		timer := time.NewTimer(s.lookupDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			log.FromContext(ctx).DebugContext(ctx, "Lookup cancelled by client", log.FieldLocation, location)
			return
		}
	}

	tmpl, ok := catalog.Lookup(location)
	log.NewStructuredLogger(log.FromContext(ctx)).LogLookup(ctx, location, ok)
	if !ok {
		JSON(http.StatusNotFound, ErrorBody{
			Error:   "Location not found",
			Message: catalog.NotFoundMessage(),
		}).Write(w)
		return
	}
	JSON(http.StatusOK, tmpl).Write(w)
}

func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	JSON(http.StatusOK, catalog.Locations()).Write(w)
}

// SuggestResponse is the body of GET /api/suggest.
type SuggestResponse struct {
	Merchant string         `json:"merchant"`
	Found    bool           `json:"found"`
	Category *core.Category `json:"category,omitempty"`
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	merchant := sanitizeInput(r.URL.Query().Get("merchant"))
	if strings.TrimSpace(merchant) == "" {
		BadRequestError("Merchant parameter is required").Write(w)
		return
	}

	resp := SuggestResponse{Merchant: merchant}
	if id, ok := query.SuggestCategory(merchant); ok {
		c := core.CategoryByID(id)
		resp.Found = true
		resp.Category = &c
	}
	JSON(http.StatusOK, resp).Write(w)
}
