package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ContentTypeJSON is the value of the Content-Type header for JSON payloads.
const ContentTypeJSON = "application/json"

// RespondJSON encodes payload as JSON and writes it with the given status.
// A nil payload writes the status only.
func RespondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	if payload == nil {
		w.WriteHeader(status)
		return
	}

	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error encoding response to JSON", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

// RespondError writes {"msg": message} with the given status.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	RespondJSON(w, logger, status, map[string]string{"msg": message})
}
