package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/hsaban/saband/internal/answer"
	"github.com/hsaban/saband/internal/domain"
	"github.com/hsaban/saband/internal/llm"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages []chatMessage `json:"messages"`
}

type askRequest struct {
	Query string `json:"query"`
}

// handleChat answers the last message of a chat transcript. Earlier turns
// travel with the request so the model can resolve follow-up questions.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	turns := make([]llm.Turn, 0, len(req.Messages))
	for _, m := range req.Messages {
		turns = append(turns, llm.Turn{Role: m.Role, Content: m.Content})
	}
	bp, err := s.deps.Answers.ResolveChat(r.Context(), turns)
	s.writeBlueprint(w, bp, err)
}

// handleAsk answers a single standalone question.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	bp, err := s.deps.Answers.Resolve(r.Context(), req.Query)
	s.writeBlueprint(w, bp, err)
}

func (s *Server) writeBlueprint(w http.ResponseWriter, bp *domain.Blueprint, err error) {
	if err != nil {
		if errors.Is(err, answer.ErrEmptyQuery) {
			writeError(w, http.StatusBadRequest, msgBadRequest)
			return
		}
		s.logger.Error("resolve failed", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	writeJSON(w, http.StatusOK, bp)
}

// handleEnrichAll backfills media and descriptions for inventory rows that
// are missing them.
func (s *Server) handleEnrichAll(w http.ResponseWriter, r *http.Request) {
	updated, err := s.deps.Answers.EnrichInventory(r.Context())
	if err != nil {
		s.logger.Error("enrich failed", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	if updated == nil {
		updated = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"updated": updated,
	})
}

type getImageRequest struct {
	ProductName string `json:"productName"`
	SKU         string `json:"sku"`
}

func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	var req getImageRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	if strings.TrimSpace(req.ProductName) == "" {
		writeError(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	url, err := s.deps.Answers.ResolveImage(r.Context(), req.ProductName, req.SKU)
	if err != nil {
		s.logger.Error("image lookup failed", "product", req.ProductName, "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"image_url": url,
	})
}

// handleCheck reports configuration presence and datastore reachability.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	cfg := s.deps.Config
	body := map[string]any{
		"model_backend":     cfg.ModelBackend,
		"gemini_key":        cfg.GeminiAPIKey != "",
		"claude_key":        cfg.ClaudeAPIKey != "",
		"google_search_key": cfg.SearchAPIKey != "" && cfg.SearchEngineID != "",
		"data_version":      cfg.DataVersion,
	}
	if err := s.deps.DB.PingContext(r.Context()); err != nil {
		s.logger.Error("datastore probe failed", "error", err)
		body["status"] = "degraded"
		body["db_connection"] = false
		writeJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	body["status"] = "ok"
	body["db_connection"] = true
	writeJSON(w, http.StatusOK, body)
}
