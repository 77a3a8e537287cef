package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"failed to marshal response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string, err error) {
	if err != nil && code >= 500 {
		zap.L().Error("request failed",
			zap.Int("status", code),
			zap.String("message", message),
			zap.Error(err),
		)
	}
	respondWithJSON(w, code, map[string]string{"error": message})
}
