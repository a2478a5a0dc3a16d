package apihttp

import (
	"errors"
	"log/slog"
	"net/http"

	"mpvremote/internal/domain"
	"mpvremote/internal/metrics"
	"mpvremote/internal/usecase"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not_found", "not found")
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeHTML(w, http.StatusOK, controlPageHTML)
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.startPlayback == nil {
		writeError(w, http.StatusNotImplemented, "not_configured", "playback is not configured")
		return
	}
	if !isJSONContentType(r.Header.Get("Content-Type")) {
		writeError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "content type must be application/json")
		return
	}

	req, err := decodePlayRequest(http.MaxBytesReader(w, r.Body, maxPlayRequestBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	err = s.startPlayback.Execute(r.Context(), req)
	if errors.Is(err, domain.ErrInvalidPlayRequest) {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	s.writePlaybackResult(w, r, "play", err, domain.MessagePlaybackStarted)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.pausePlayback == nil {
		writeError(w, http.StatusNotImplemented, "not_configured", "pause is not configured")
		return
	}
	err := s.pausePlayback.Execute(r.Context())
	s.writePlaybackResult(w, r, "pause", err, domain.MessagePlaybackPaused)
}

func (s *Server) handleUnpause(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.resumePlayback == nil {
		writeError(w, http.StatusNotImplemented, "not_configured", "unpause is not configured")
		return
	}
	err := s.resumePlayback.Execute(r.Context())
	s.writePlaybackResult(w, r, "unpause", err, domain.MessagePlaybackResumed)
}

// writePlaybackResult always answers 200; the outcome travels in the
// envelope status.
func (s *Server) writePlaybackResult(w http.ResponseWriter, r *http.Request, action string, err error, message string) {
	if err == nil {
		metrics.PlaybackResultsTotal.WithLabelValues(action, string(domain.StatusSuccess)).Inc()
		writeJSON(w, http.StatusOK, domain.Success(message))
		return
	}

	metrics.PlaybackResultsTotal.WithLabelValues(action, string(domain.StatusError)).Inc()

	var conflict *usecase.StateConflictError
	if errors.As(err, &conflict) {
		s.logger.Info("playback action rejected",
			slog.String("action", action),
			slog.String("state", conflict.State.String()),
		)
		writeJSON(w, http.StatusOK, domain.Failure(conflict.State))
		return
	}

	level := slog.LevelWarn
	if r.Context().Err() != nil {
		level = slog.LevelDebug
	}
	s.logger.Log(r.Context(), level, "playback action failed",
		slog.String("action", action),
		slog.String("error", err.Error()),
	)
	writeJSON(w, http.StatusOK, domain.Failure(domain.ErrorState(err.Error())))
}
