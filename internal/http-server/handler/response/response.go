package response

import (
	"encoding/json"
	"net/http"

	"commission-tracker/internal/domain"

	"github.com/wb-go/wbf/zlog"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, logger *zlog.Zerolog, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error().Err(err).Msg("Failed to encode response")
	}
}

// Error writes err using its kind for the status code. Only the public
// message leaves the process.
func Error(w http.ResponseWriter, logger *zlog.Zerolog, err error) {
	status := StatusOf(err)

	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).Int("status", status).Msg("Request failed")

	JSON(w, logger, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: domain.MessageOf(err),
	})
}

func StatusOf(err error) int {
	switch domain.KindOf(err) {
	case domain.KindUser:
		return http.StatusBadRequest
	case domain.KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
