package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/rs/zerolog/log"

	"github.com/parallel-finance/staking-agent/internal/api/handlers"
	"github.com/parallel-finance/staking-agent/internal/observability/metrics"
	"github.com/parallel-finance/staking-agent/internal/types"
)

type ErrorResponse struct {
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
}

const internalErrorMessage = "Internal service error"

type handlerFunc func(*http.Request) (*handlers.Result, *types.Error)

// registerHandler turns a handler into an http.HandlerFunc that writes json
// and records the request duration per route.
func registerHandler(handle handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timer := metrics.StartHttpRequestDurationTimer(routePattern(r))
		status, body := respond(r, handle)
		timer(status)
		writeResponse(w, r, status, body)
	}
}

func respond(r *http.Request, handle handlerFunc) (int, interface{}) {
	result, apiErr := handle(r)
	logger := log.Ctx(r.Context())

	if apiErr != nil {
		status := apiErr.StatusCode
		if http.StatusText(status) == "" {
			logger.Error().Err(apiErr).Int("status_code", status).Msg("invalid status code")
			status = http.StatusInternalServerError
		}
		res := &ErrorResponse{ErrorCode: apiErr.ErrorCode.String(), Message: apiErr.Error()}
		if status >= http.StatusInternalServerError {
			logger.Error().Err(apiErr).Msg("request failed with 5xx error")
			res.Message = internalErrorMessage
		}
		return status, res
	}

	if result == nil || http.StatusText(result.Status) == "" {
		logger.Error().Msg("invalid success response, error returned")
		return http.StatusInternalServerError, &ErrorResponse{
			ErrorCode: types.InternalServiceError.String(),
			Message:   internalErrorMessage,
		}
	}
	return result.Status, result.Data
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	return r.URL.Path
}

func writeResponse(w http.ResponseWriter, r *http.Request, statusCode int, res interface{}) {
	respBytes, err := json.Marshal(res)
	if err != nil {
		log.Ctx(r.Context()).Err(err).Msg("failed to marshal response")
		http.Error(w, "Failed to process the request. Please try again later.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(respBytes) // nolint:errcheck
}
