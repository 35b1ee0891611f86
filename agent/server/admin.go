package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	storex "github.com/tanpawarit/neobank-assistant/agent/store"
)

func (s *Server) adminError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Msg("admin request failed")
	}
	Error(w, status, err.Error())
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	ov, err := s.admin.Overview(r.Context())
	if err != nil {
		s.adminError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, ov)
}

func (s *Server) handleCounts(w http.ResponseWriter, r *http.Request) {
	c, err := s.admin.Counts(r.Context())
	if err != nil {
		s.adminError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, c)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rows, err := s.admin.SearchTransactions(r.Context(), storex.TransactionFilter{
		Search: q.Get("search"),
		Type:   q.Get("type"),
	})
	if err != nil {
		s.adminError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, rows)
}

func (s *Server) handlePendingRequests(w http.ResponseWriter, r *http.Request) {
	rows, err := s.admin.PendingServiceRequests(r.Context())
	if err != nil {
		s.adminError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, rows)
}

func (s *Server) handleProcessedRequests(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			Error(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	rows, err := s.admin.ProcessedServiceRequests(r.Context(), limit)
	if err != nil {
		s.adminError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, rows)
}

func (s *Server) handleSetStatus(status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requestID(w, r)
		if !ok {
			return
		}
		if err := s.admin.SetServiceRequestStatus(r.Context(), id, status); err != nil {
			s.adminError(w, r, err)
			return
		}
		hlog.FromRequest(r).Info().Int64("request_id", id).Str("status", status).Msg("service request updated")
		JSON(w, http.StatusOK, map[string]any{"id": id, "status": status})
	}
}

func (s *Server) handleDeleteRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := requestID(w, r)
	if !ok {
		return
	}
	if err := s.admin.DeleteServiceRequest(r.Context(), id); err != nil {
		s.adminError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearRequests(w http.ResponseWriter, r *http.Request) {
	n, err := s.admin.ClearServiceRequests(r.Context())
	if err != nil {
		s.adminError(w, r, err)
		return
	}
	hlog.FromRequest(r).Warn().Int64("deleted", n).Msg("service requests cleared")
	JSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

func requestID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		Error(w, http.StatusBadRequest, "invalid service request id")
		return 0, false
	}
	return id, true
}
