package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/hlog"

	historyx "github.com/tanpawarit/neobank-assistant/agent/history"
)

const maxChatBody = 1 << 20

type chatRequest struct {
	Message string          `json:"message"`
	History []historyx.Turn `json:"history"`
}

type chatResponse struct {
	Response string `json:"response"`
	Role     string `json:"role"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBody))
	if err := dec.Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	reply, err := s.chat.HandleMessage(r.Context(), req.Message, req.History)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("chat turn failed")
		if s.cfg.structured() {
			Error(w, statusFor(err), err.Error())
			return
		}
		// Legacy clients render the error text as a model bubble.
		reply = "Error: " + err.Error()
	}

	JSON(w, http.StatusOK, chatResponse{Response: reply, Role: "model"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.admin.Ping(r.Context()); err != nil {
		Error(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
