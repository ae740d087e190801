package webserv

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type errorPayload struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorPayload{Error: message})
}

// sseStream prepares an SSE response and returns the frame writer. A nil
// writer means the connection cannot flush and streaming is off the table.
func sseStream(w http.ResponseWriter) func(payload any) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	return func(payload any) {
		if raw, ok := payload.(string); ok {
			fmt.Fprintf(w, "data: %s\n\n", raw)
		} else {
			encoded, err := json.Marshal(payload)
			if err != nil {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", encoded)
		}
		flusher.Flush()
	}
}

const doneFrame = "[DONE]"
