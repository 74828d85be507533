// Package httpapi exposes the explorer over HTTP: dataset payloads for
// the render surface, selection and analysis operations, and the
// game-mode round lifecycle.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"constellation-backend/internal/application/explorer"
	"constellation-backend/internal/domain/graph"
	"constellation-backend/internal/domain/puzzle"
)

// Handler holds the HTTP endpoints over the explorer service.
type Handler struct {
	svc      *explorer.Service
	validate *validator.Validate
	logger   *zap.Logger
}

// NewHandler creates the endpoint set.
func NewHandler(svc *explorer.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		svc:      svc,
		validate: validator.New(),
		logger:   logger,
	}
}

// category resolves the path segment, accepting the legacy dataset
// aliases. A false return means the response has been written.
func (h *Handler) category(w http.ResponseWriter, r *http.Request) (graph.Category, bool) {
	raw := chi.URLParam(r, "category")
	category, ok := graph.ParseCategory(raw)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown dataset category")
		return "", false
	}
	return category, true
}

// decode parses and validates a JSON request body.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// Ping reports liveness.
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Nodes returns the full node table in columnar form.
func (h *Handler) Nodes(w http.ResponseWriter, r *http.Request) {
	category, ok := h.category(w, r)
	if !ok {
		return
	}
	g, err := h.svc.Graph(category)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if category == graph.CategorySocial {
		writeJSON(w, http.StatusOK, socialNodes(g))
		return
	}
	writeJSON(w, http.StatusOK, topicNodes(g))
}

// Edges returns the full edge table in columnar form.
func (h *Handler) Edges(w http.ResponseWriter, r *http.Request) {
	category, ok := h.category(w, r)
	if !ok {
		return
	}
	g, err := h.svc.Graph(category)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if category == graph.CategorySocial {
		writeJSON(w, http.StatusOK, socialEdges(g))
		return
	}
	writeJSON(w, http.StatusOK, topicEdges(g))
}

// Reload re-fetches the dataset and replaces the snapshot.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	category, ok := h.category(w, r)
	if !ok {
		return
	}
	if err := h.svc.LoadDataset(r.Context(), category); err != nil {
		h.respondError(w, err)
		return
	}
	g, err := h.svc.Graph(category)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"nodes": g.NodeCount(),
		"edges": g.EdgeCount(),
	})
}

// VisibleGraph returns the renderable subgraph for the current mode.
func (h *Handler) VisibleGraph(w http.ResponseWriter, r *http.Request) {
	category, ok := h.category(w, r)
	if !ok {
		return
	}
	view, err := h.svc.VisibleGraph(category)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ToggleSelection flips one node in or out of the selection.
func (h *Handler) ToggleSelection(w http.ResponseWriter, r *http.Request) {
	category, ok := h.category(w, r)
	if !ok {
		return
	}
	var req toggleRequest
	if !h.decode(w, r, &req) {
		return
	}
	selected, err := h.svc.ToggleSelection(category, req.Node)
	if err != nil {
		h.respondError(w, err)
		return
	}
	selection, err := h.svc.Selection(category)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toggleResponse{
		Node:      req.Node,
		Selected:  selected,
		Selection: selection,
	})
}

// ClearSelection empties the selection.
func (h *Handler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	category, ok := h.category(w, r)
	if !ok {
		return
	}
	if err := h.svc.ClearSelection(category); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Connections asks the analysis service how the nodes are connected.
func (h *Handler) Connections(w http.ResponseWriter, r *http.Request) {
	category, ok := h.category(w, r)
	if !ok {
		return
	}
	var req connectionsRequest
	if !h.decode(w, r, &req) {
		return
	}
	text, err := h.svc.Analyze(r.Context(), category, req.Users)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, connectionsResponse{Analysis: text})
}

// StartPuzzle enters game mode and seeds the first round.
func (h *Handler) StartPuzzle(w http.ResponseWriter, r *http.Request) {
	category, ok := h.category(w, r)
	if !ok {
		return
	}
	snap, err := h.svc.StartPuzzle(category)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, puzzleStateResponse{
		State: h.state(category),
		Round: &snap,
	})
}

// PuzzleState reports the engine state and the current round, if any.
func (h *Handler) PuzzleState(w http.ResponseWriter, r *http.Request) {
	category, ok := h.category(w, r)
	if !ok {
		return
	}
	state, snap, err := h.svc.PuzzleState(category)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, puzzleStateResponse{State: state, Round: snap})
}

// SubmitGuess forwards one guess to the active round.
func (h *Handler) SubmitGuess(w http.ResponseWriter, r *http.Request) {
	category, ok := h.category(w, r)
	if !ok {
		return
	}
	var req guessRequest
	if !h.decode(w, r, &req) {
		return
	}
	res, snap, err := h.svc.SubmitGuess(category, req.Guess)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, guessResponse{
		Ignored:   res.Ignored,
		Correct:   res.Correct,
		Duplicate: res.Duplicate,
		Exhausted: res.Exhausted,
		Round:     snap,
	})
}

// SkipPuzzle reveals the current round without spending a guess.
func (h *Handler) SkipPuzzle(w http.ResponseWriter, r *http.Request) {
	category, ok := h.category(w, r)
	if !ok {
		return
	}
	snap, err := h.svc.SkipPuzzle(category)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, puzzleStateResponse{
		State: h.state(category),
		Round: &snap,
	})
}

// AdvancePuzzle starts the next round after resolution.
func (h *Handler) AdvancePuzzle(w http.ResponseWriter, r *http.Request) {
	category, ok := h.category(w, r)
	if !ok {
		return
	}
	snap, err := h.svc.AdvancePuzzle(category)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, puzzleStateResponse{
		State: h.state(category),
		Round: &snap,
	})
}

// ExitPuzzle leaves game mode.
func (h *Handler) ExitPuzzle(w http.ResponseWriter, r *http.Request) {
	category, ok := h.category(w, r)
	if !ok {
		return
	}
	if err := h.svc.ExitPuzzle(category); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) state(category graph.Category) puzzle.State {
	state, _, err := h.svc.PuzzleState(category)
	if err != nil {
		return puzzle.StateIdle
	}
	return state
}
