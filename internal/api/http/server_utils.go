package apihttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"mpvremote/internal/domain"
)

const maxPlayRequestBytes = 64 << 10

type errorEnvelope struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorPayload{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func isJSONContentType(value string) bool {
	if strings.TrimSpace(value) == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return false
	}
	return mediaType == "application/json"
}

// playRequestBody distinguishes absent fields from zero values.
type playRequestBody struct {
	URL   *string             `json:"url"`
	State *domain.PlayerState `json:"state"`
}

func decodePlayRequest(body io.Reader) (domain.PlayRequest, error) {
	var payload playRequestBody
	dec := json.NewDecoder(body)
	if err := dec.Decode(&payload); err != nil {
		if errors.Is(err, domain.ErrInvalidPlayerState) {
			return domain.PlayRequest{}, errors.New(`invalid state: expected "playing" or "paused"`)
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return domain.PlayRequest{}, fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		}
		return domain.PlayRequest{}, errors.New("invalid json")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return domain.PlayRequest{}, errors.New("invalid json: unexpected data after the request object")
	}
	if payload.URL == nil || strings.TrimSpace(*payload.URL) == "" {
		return domain.PlayRequest{}, errors.New("url is required")
	}
	if payload.State == nil {
		return domain.PlayRequest{}, errors.New("state is required")
	}
	return domain.PlayRequest{
		URL:   strings.TrimSpace(*payload.URL),
		State: *payload.State,
	}, nil
}
