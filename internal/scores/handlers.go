package scores

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hersh/blitztris/internal/protocol"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, protocol.ErrorResponse{Error: msg})
}

func Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, protocol.MessageResponse{Message: "Blitztris scoreboard API is running"})
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func ListScores(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := svc.List(r.Context())
		if err != nil {
			svc.log.Error("list scores", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to fetch scores")
			return
		}
		writeJSON(w, http.StatusOK, recs)
	}
}

func CreateScore(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req protocol.CreateScoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		rec, err := svc.Submit(r.Context(), req)
		switch {
		case errors.Is(err, ErrInvalid):
			writeError(w, http.StatusBadRequest, "Name, score, and level are required")
		case err != nil:
			svc.log.Error("save score", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to save score")
		default:
			writeJSON(w, http.StatusCreated, rec)
		}
	}
}

func RenameScore(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req protocol.RenameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		err := svc.Rename(r.Context(), chi.URLParam(r, "id"), req.Name)
		switch {
		case errors.Is(err, ErrInvalid):
			writeError(w, http.StatusBadRequest, "Name is required")
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "Score not found")
		case err != nil:
			svc.log.Error("rename score", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to update name")
		default:
			writeJSON(w, http.StatusOK, protocol.MessageResponse{Message: "Name updated successfully"})
		}
	}
}

// Subscribe streams leaderboard updates over a websocket, starting with the
// current standings.
func Subscribe(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var initial *protocol.Envelope
		if env, err := svc.Leaderboard(r.Context()); err == nil {
			initial = &env
		} else {
			svc.log.Warn("initial leaderboard", zap.Error(err))
		}
		svc.hub.Serve(w, r, initial)
	}
}
