package main

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server exposes the corpus and the generation engine over HTTP for the
// frontend. Successful generations are forwarded to the remote sinks; file
// reports are a batch-mode concern and are not written here.
type Server struct {
	corpus  *Corpus
	engine  *Engine
	remotes []RemoteSink
}

func NewServer(corpus *Corpus, engine *Engine, remotes []RemoteSink) *Server {
	return &Server{corpus: corpus, engine: engine, remotes: remotes}
}

// Router builds the API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/topics", s.handleTopics)
	r.Get("/api/keywords", s.handleKeywords)
	r.Post("/api/generate-blog", s.handleGenerateBlog)
	r.Post("/api/generate-multiple", s.handleGenerateMultiple)
	r.Get("/api/stats", s.handleStats)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"message":   "Blog Generator API is running",
	})
}

func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	type topicEntry struct {
		ID          int    `json:"id"`
		Topic       string `json:"topic"`
		Description string `json:"description"`
		Source      string `json:"source"`
	}

	topics := make([]topicEntry, 0, len(s.corpus.Topics))
	for i, t := range s.corpus.Topics {
		topics = append(topics, topicEntry{
			ID:          i,
			Topic:       t.Topic,
			Description: t.Description,
			Source:      t.SourceURL,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"topics": topics,
		"count":  len(topics),
	})
}

func (s *Server) handleKeywords(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"seo_keywords": categoryMap(s.corpus.SEOKeywords),
		"llm_keywords": categoryMap(s.corpus.LLMKeywords),
	})
}

func categoryMap(set KeywordSet) map[string][]string {
	m := make(map[string][]string, len(set.Categories))
	for _, cat := range set.Categories {
		m[cat.Name] = cat.Keywords
	}
	return m
}

type generateBlogRequest struct {
	TopicID     *int   `json:"topic_id"`
	CustomTopic string `json:"custom_topic"`
}

func (s *Server) handleGenerateBlog(w http.ResponseWriter, r *http.Request) {
	var req generateBlogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var topic TopicRecord
	switch {
	case req.CustomTopic != "":
		topic = TopicRecord{
			Topic:       req.CustomTopic,
			Description: "Custom topic provided by user",
			SourceURL:   "User input",
		}
	case req.TopicID != nil && *req.TopicID >= 0 && *req.TopicID < len(s.corpus.Topics):
		topic = s.corpus.Topics[*req.TopicID]
	default:
		writeError(w, http.StatusBadRequest, "Invalid topic selection")
		return
	}

	result := s.engine.Generate(r.Context(), topic, s.corpus.SEOKeywords, s.corpus.LLMKeywords, s.corpus.Links)
	result.Index = 1
	result.GeneratedAt = time.Now()

	if result.Status != StatusSuccess {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"status": "error",
			"error":  result.Error,
		})
		return
	}

	s.storeRemotes(&result)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"blog":   result,
	})
}

type generateMultipleRequest struct {
	Count    int   `json:"count"`
	TopicIDs []int `json:"topic_ids"`
}

type multiResult struct {
	Index     int     `json:"index"`
	Topic     string  `json:"topic"`
	Status    string  `json:"status"`
	WordCount int     `json:"word_count"`
	Cost      float64 `json:"cost"`
	Tokens    int     `json:"tokens"`
	Error     string  `json:"error"`
}

func (s *Server) handleGenerateMultiple(w http.ResponseWriter, r *http.Request) {
	var req generateMultipleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	count := req.Count
	if count <= 0 {
		count = 3
	}
	if count > 10 {
		writeError(w, http.StatusBadRequest, "Maximum 10 blogs per request")
		return
	}

	var topics []TopicRecord
	if len(req.TopicIDs) > 0 {
		ids := req.TopicIDs
		if len(ids) > count {
			ids = ids[:count]
		}
		for _, id := range ids {
			if id < 0 || id >= len(s.corpus.Topics) {
				writeError(w, http.StatusBadRequest, "Invalid topic selection")
				return
			}
			topics = append(topics, s.corpus.Topics[id])
		}
	} else {
		n := count
		if n > len(s.corpus.Topics) {
			n = len(s.corpus.Topics)
		}
		topics = s.corpus.Topics[:n]
	}

	results := make([]multiResult, 0, len(topics))
	successful := 0
	totalCost := 0.0

	for i, topic := range topics {
		result := s.engine.Generate(r.Context(), topic, s.corpus.SEOKeywords, s.corpus.LLMKeywords, s.corpus.Links)
		result.Index = i + 1
		result.GeneratedAt = time.Now()

		if result.Status == StatusSuccess {
			successful++
			totalCost += result.Cost
			s.storeRemotes(&result)
		}

		results = append(results, multiResult{
			Index:     result.Index,
			Topic:     result.Topic,
			Status:    string(result.Status),
			WordCount: result.WordCount,
			Cost:      result.Cost,
			Tokens:    result.TotalTokens,
			Error:     result.Error,
		})
	}

	avgCost := 0.0
	if successful > 0 {
		avgCost = totalCost / float64(successful)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "completed",
		"summary": map[string]interface{}{
			"total_requested": count,
			"successful":      successful,
			"failed":          len(results) - successful,
			"total_cost":      round4(totalCost),
			"average_cost":    round4(avgCost),
		},
		"results": results,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	stats := map[string]interface{}{
		"available_topics": len(s.corpus.Topics),
		"seo_categories":   len(s.corpus.SEOKeywords.Categories),
		"llm_categories":   len(s.corpus.LLMKeywords.Categories),
		"website_links":    len(s.corpus.Links),
		"openai_connected": s.engine.TestConnection(ctx) == nil,
	}
	for _, sink := range s.remotes {
		stats[sink.Name()+"_connected"] = sink.TestConnection() == nil
	}

	writeJSON(w, http.StatusOK, stats)
}

// storeRemotes forwards one result to the remote sinks. Failures are
// logged, not surfaced to the API caller.
func (s *Server) storeRemotes(result *BlogResult) {
	for _, sink := range s.remotes {
		if err := sink.Store(result); err != nil {
			log.Printf("✗ Sink %s failed for %q: %v", sink.Name(), result.Topic, err)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("✗ Encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
