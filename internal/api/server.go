package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/knowledge-engine/pagefilter/internal/engine"
	"github.com/knowledge-engine/pagefilter/internal/filter"
	"github.com/knowledge-engine/pagefilter/internal/review"
)

type Server struct {
	Engine *engine.Engine
	Logger *logrus.Entry
	Router chi.Router
}

func NewServer(eng *engine.Engine, logger *logrus.Entry) *Server {
	s := &Server{
		Engine: eng,
		Logger: logger,
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.Logger))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/index", s.handleIndex)
		r.Get("/filter", s.handleFilter)
		r.Post("/events", s.handleEvent)

		r.Route("/review", func(r chi.Router) {
			r.Get("/", s.handleReviewStatus)
			r.Post("/activate", s.handleReviewActivate)
			r.Post("/deactivate", s.handleReviewDeactivate)
			r.Get("/flagged", s.handleReviewFlagged)
			r.Get("/topics/*", s.handleGetTopic)
			r.Put("/topics/*", s.handleSetTopic)
		})
	})

	s.Router = r
}

func (s *Server) Start(addr string) error {
	s.Logger.Infof("Starting API Server on %s", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// Responses
type ErrorResponse struct {
	Error string `json:"error"`
}

type StatusResponse struct {
	Loaded        bool   `json:"loaded"`
	Source        string `json:"source,omitempty"`
	Title         string `json:"title,omitempty"`
	LoadedFor     string `json:"loaded_for,omitempty"`
	Evaluations   int64  `json:"evaluations"`
	FollowedLinks int64  `json:"followed_links"`
}

type IndexResponse struct {
	Entries  []engine.EntryView   `json:"entries"`
	Sections []engine.SectionView `json:"sections"`
}

type EventRequest struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type ReviewStatusResponse struct {
	Active  bool   `json:"active"`
	BaseURL string `json:"base_url,omitempty"`
}

type TopicResponse struct {
	Topic   string          `json:"topic"`
	State   review.State    `json:"state"`
	Actions []review.Action `json:"actions"`
}

// Handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !s.Engine.Loaded() {
		jsonResponse(w, http.StatusOK, StatusResponse{Loaded: false})
		return
	}

	stats := s.Engine.Snapshot()
	jsonResponse(w, http.StatusOK, StatusResponse{
		Loaded:        true,
		Source:        stats.Source,
		Title:         stats.Title,
		LoadedFor:     time.Since(stats.LoadedAt).Round(time.Second).String(),
		Evaluations:   stats.Evaluations,
		FollowedLinks: stats.FollowedLinks,
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	entries, sections, err := s.Engine.Index()
	if err != nil {
		s.engineError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, IndexResponse{Entries: entries, Sections: sections})
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	state, err := s.Engine.Filter(r.URL.Query().Get("q"))
	if err != nil {
		s.engineError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, state)
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}

	typ, err := filter.ParseEventType(req.Type)
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	state, err := s.Engine.Dispatch(filter.Event{Type: typ, Value: req.Value})
	if err != nil {
		s.engineError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, state)
}

func (s *Server) handleReviewStatus(w http.ResponseWriter, r *http.Request) {
	active, err := s.Engine.Review.Active()
	if err != nil {
		jsonResponse(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	resp := ReviewStatusResponse{Active: active}
	if active {
		resp.BaseURL, _ = s.Engine.Review.BaseURL()
	}
	jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleReviewActivate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
			return
		}
	}
	if req.URL == "" {
		req.URL = s.Engine.BaseURL()
	}
	if req.URL == "" {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "URL is required"})
		return
	}

	if err := s.Engine.Review.Activate(req.URL); err != nil {
		jsonResponse(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	base, _ := s.Engine.Review.BaseURL()
	jsonResponse(w, http.StatusOK, ReviewStatusResponse{Active: true, BaseURL: base})
}

func (s *Server) handleReviewDeactivate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Confirm bool `json:"confirm"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
			return
		}
	}

	cleared, err := s.Engine.Review.Deactivate(func() bool { return req.Confirm })
	if err != nil {
		jsonResponse(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	if !cleared {
		jsonResponse(w, http.StatusConflict, ErrorResponse{Error: "flagged topics exist, confirm to discard them"})
		return
	}
	jsonResponse(w, http.StatusOK, ReviewStatusResponse{Active: false})
}

func (s *Server) handleReviewFlagged(w http.ResponseWriter, r *http.Request) {
	links, err := s.Engine.FlaggedItems()
	if err != nil {
		s.engineError(w, err)
		return
	}
	if links == nil {
		links = []string{}
	}
	jsonResponse(w, http.StatusOK, map[string][]string{"links": links})
}

func (s *Server) handleGetTopic(w http.ResponseWriter, r *http.Request) {
	topic := topicParam(r)
	state, err := s.Engine.Review.State(topic)
	if err != nil {
		jsonResponse(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	jsonResponse(w, http.StatusOK, TopicResponse{Topic: topic, State: state, Actions: review.Actions(state)})
}

func (s *Server) handleSetTopic(w http.ResponseWriter, r *http.Request) {
	var req struct {
		State string `json:"state"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}

	active, err := s.Engine.Review.Active()
	if err != nil {
		jsonResponse(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	if !active {
		jsonResponse(w, http.StatusConflict, ErrorResponse{Error: "review mode is not active"})
		return
	}

	topic := topicParam(r)
	err = s.Engine.Review.SetState(topic, review.State(req.State))
	if errors.Is(err, review.ErrInvalidState) {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		jsonResponse(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	state := review.State(req.State)
	jsonResponse(w, http.StatusOK, TopicResponse{Topic: topic, State: state, Actions: review.Actions(state)})
}

// topicParam returns the topic ID from the wildcard route, anchors removed
func topicParam(r *http.Request) string {
	return review.StripAnchor("/" + chi.URLParam(r, "*"))
}

func (s *Server) engineError(w http.ResponseWriter, err error) {
	if errors.Is(err, engine.ErrNotLoaded) {
		jsonResponse(w, http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
		return
	}
	s.Logger.WithError(err).Error("Request failed")
	jsonResponse(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
}

func jsonResponse(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
