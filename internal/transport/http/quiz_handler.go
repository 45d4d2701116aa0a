package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"quizlens/internal/app"
	"quizlens/internal/domain"
)

const (
	maxUploadBytes     = 32 << 20
	defaultSearchLimit = 10
)

type generateRequest struct {
	Name       string `json:"name"`
	Mode       string `json:"mode"`
	Topic      string `json:"topic"`
	Text       string `json:"text"`
	PDF        []byte `json:"pdf,omitempty"`
	Count      int    `json:"count"`
	Difficulty string `json:"difficulty"`
}

func (req generateRequest) toApp() app.GenerateRequest {
	return app.GenerateRequest{
		Name:       req.Name,
		Mode:       domain.InputMode(req.Mode),
		Topic:      req.Topic,
		Text:       req.Text,
		PDF:        req.PDF,
		Count:      req.Count,
		Difficulty: domain.Difficulty(req.Difficulty),
	}
}

type selectRequest struct {
	Index  int    `json:"index"`
	Option string `json:"option"`
}

type submitRequest struct {
	Answers []string `json:"answers"`
}

type predictionResponse struct {
	Topic      string  `json:"topic"`
	Difficulty string  `json:"difficulty"`
	Prediction float64 `json:"prediction"`
}

// QuizHandler serves the quiz REST API. The session id comes from a cookie.
type QuizHandler struct {
	service *app.QuizService
	ids     *SessionIdentifier
}

func NewQuizHandler(service *app.QuizService, ids *SessionIdentifier) *QuizHandler {
	return &QuizHandler{service: service, ids: ids}
}

func (h *QuizHandler) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/quiz", h.Generate).Methods(http.MethodPost)
	api.HandleFunc("/quiz", h.State).Methods(http.MethodGet)
	api.HandleFunc("/quiz/answers/{index:[0-9]+}", h.SelectAnswer).Methods(http.MethodPut)
	api.HandleFunc("/quiz/submit", h.Submit).Methods(http.MethodPost)
	api.HandleFunc("/quiz/restart", h.Restart).Methods(http.MethodPost)
	api.HandleFunc("/predict", h.Predict).Methods(http.MethodGet)
	api.HandleFunc("/weak-topics", h.WeakTopics).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard", h.Leaderboard).Methods(http.MethodGet)
	api.HandleFunc("/topics", h.SearchTopics).Methods(http.MethodGet)
}

func (h *QuizHandler) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := h.ids.Resolve(w, r)
	if err != nil {
		log.Printf("resolve session: %v", err)
		writeErrorResponse(w, http.StatusInternalServerError, "session unavailable")
		return "", false
	}
	return id, true
}

// Generate accepts JSON, or a multipart form with the document in a "pdf" file field.
func (h *QuizHandler) Generate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var (
		req generateRequest
		err error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		req, err = parseMultipartGenerate(r)
	} else {
		err = json.NewDecoder(r.Body).Decode(&req)
	}
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid generate payload")
		return
	}

	view, err := h.service.Generate(r.Context(), id, req.toApp())
	if err != nil {
		log.Printf("generate quiz for session %s: %v", id, err)
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, view)
}

func parseMultipartGenerate(r *http.Request) (generateRequest, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return generateRequest{}, err
	}
	req := generateRequest{
		Name:       r.FormValue("name"),
		Mode:       r.FormValue("mode"),
		Topic:      r.FormValue("topic"),
		Text:       r.FormValue("text"),
		Difficulty: r.FormValue("difficulty"),
	}
	if raw := r.FormValue("count"); raw != "" {
		count, err := strconv.Atoi(raw)
		if err != nil {
			return generateRequest{}, fmt.Errorf("count: %w", err)
		}
		req.Count = count
	}

	file, _, err := r.FormFile("pdf")
	if errors.Is(err, http.ErrMissingFile) {
		return req, nil
	}
	if err != nil {
		return generateRequest{}, err
	}
	defer file.Close()
	req.PDF, err = io.ReadAll(file)
	return req, err
}

func (h *QuizHandler) State(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	writeJSONResponse(w, http.StatusOK, h.service.State(r.Context(), id))
}

func (h *QuizHandler) SelectAnswer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid question index")
		return
	}
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid answer payload")
		return
	}

	view, err := h.service.SelectAnswer(r.Context(), id, index, req.Option)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, view)
}

// Submit takes an optional body with the full answer list.
func (h *QuizHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeErrorResponse(w, http.StatusBadRequest, "invalid submit payload")
		return
	}

	result, err := h.service.Submit(r.Context(), id, req.Answers...)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, result)
}

func (h *QuizHandler) Restart(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	writeJSONResponse(w, http.StatusOK, h.service.Restart(r.Context(), id))
}

func (h *QuizHandler) Predict(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	topic := r.URL.Query().Get("topic")
	difficulty := r.URL.Query().Get("difficulty")

	prediction, err := h.service.Predict(r.Context(), id, topic, domain.Difficulty(difficulty))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, predictionResponse{
		Topic:      topic,
		Difficulty: difficulty,
		Prediction: prediction,
	})
}

func (h *QuizHandler) WeakTopics(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	writeJSONResponse(w, http.StatusOK, h.service.WeakTopics(r.Context(), id))
}

func (h *QuizHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.Leaderboard(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, records)
}

func (h *QuizHandler) SearchTopics(w http.ResponseWriter, r *http.Request) {
	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeErrorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	topics, err := h.service.SearchTopics(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, topics)
}
