package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"discussioncomments/entities"
)

// Handler serves fetched discussions for local preview.
type Handler struct {
	discussions entities.Discussions
	slog        *slog.Logger
}

// NewHandler returns a Handler serving d. A nil map is served as empty.
func NewHandler(d entities.Discussions, lg *slog.Logger) *Handler {
	if d == nil {
		d = entities.Discussions{}
	}
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{discussions: d, slog: lg}
}

// Router returns the preview routes.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/discussions", h.List).Methods(http.MethodGet)
	r.HandleFunc("/discussions/{number}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods(http.MethodGet)
	return r
}

// List writes every discussion keyed by number.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.discussions)
}

// Get writes one discussion.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(mux.Vars(r)["number"])
	if err != nil || number <= 0 {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid discussion number"})
		return
	}
	d, ok := h.discussions[number]
	if !ok {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "discussion not found"})
		return
	}
	h.writeJSON(w, http.StatusOK, d)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.slog.Error("failed to write response", "err", err)
	}
}
