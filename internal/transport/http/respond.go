package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"quizlens/internal/domain"
	"quizlens/internal/llm"
)

type errorResponse struct {
	Error string `json:"error"`
	// Raw carries the unparsed model output for malformed quiz payloads.
	Raw string `json:"raw,omitempty"`
}

func writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	writeJSONResponse(w, statusCode, errorResponse{Error: message})
}

// writeServiceError maps a use-case error to its HTTP status.
func writeServiceError(w http.ResponseWriter, err error) {
	writeJSONResponse(w, statusFor(err), toErrorResponse(err))
}

func toErrorResponse(err error) errorResponse {
	resp := errorResponse{Error: err.Error()}
	var malformed *domain.MalformedPayloadError
	if errors.As(err, &malformed) {
		resp.Raw = malformed.Raw
	}
	return resp
}

func statusFor(err error) int {
	var (
		malformed   *domain.MalformedPayloadError
		rateLimit   *llm.ErrRateLimit
		unavailable *llm.ErrProviderUnavailable
		invalid     *llm.ErrInvalidResponse
	)
	switch {
	case errors.Is(err, domain.ErrBlankName),
		errors.Is(err, domain.ErrInvalidCount),
		errors.Is(err, domain.ErrInvalidDifficulty),
		errors.Is(err, domain.ErrInvalidMode),
		errors.Is(err, domain.ErrNoContent),
		errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrOptionNotFound),
		errors.Is(err, domain.ErrIncompleteAnswers):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoQuiz),
		errors.Is(err, domain.ErrLeaderboardUnavailable),
		errors.Is(err, domain.ErrCatalogUnavailable):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadySubmitted),
		errors.Is(err, domain.ErrGenerationSuperseded):
		return http.StatusConflict
	case errors.As(err, &malformed):
		return http.StatusUnprocessableEntity
	case errors.As(err, &rateLimit), errors.As(err, &unavailable), errors.As(err, &invalid):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
