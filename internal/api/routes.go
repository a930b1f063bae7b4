package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wflores9/StudioBot.ai/internal/domain/clips"
	"github.com/wflores9/StudioBot.ai/internal/ports"
	"github.com/wflores9/StudioBot.ai/internal/transcript"
)

// maxBodyBytes caps request bodies; a two hour transcript fits well under it.
const maxBodyBytes = 8 << 20

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/detect", detectHandler(cfg))
		r.Get("/videos/{videoID}/clips", listClipsHandler(cfg))
		r.Post("/clips/{clipID}/approval", approvalHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var uptime int64
		if !cfg.StartTime.IsZero() {
			uptime = int64(time.Since(cfg.StartTime).Seconds())
		}
		WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: Version, UptimeS: uptime})
	}
}

func detectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DetectRequest
		if err := decodeBody(w, r, &req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), "BAD_REQUEST")
			return
		}
		if err := transcript.Check(req.Sentences); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid sentences: "+err.Error(), "BAD_REQUEST")
			return
		}

		p := cfg.Params
		if req.MinClipSec != nil {
			p.MinClip = time.Duration(*req.MinClipSec) * time.Second
		}
		if req.MaxClipSec != nil {
			p.MaxClip = time.Duration(*req.MaxClipSec) * time.Second
		}
		if req.TopN != nil {
			p.TopN = *req.TopN
		}

		cands, err := clips.Detect(req.Sentences, p)
		if err != nil {
			if errors.Is(err, clips.ErrInvalidParams) {
				WriteError(w, http.StatusBadRequest, err.Error(), "INVALID_PARAMS")
				return
			}
			WriteError(w, http.StatusInternalServerError, "detection failed", "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, DetectResponse{Candidates: cands})
	}
}

func listClipsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Store == nil {
			WriteError(w, http.StatusServiceUnavailable, "clip store not configured", "UNAVAILABLE")
			return
		}
		videoID := chi.URLParam(r, "videoID")
		list, err := cfg.Store.ListClips(r.Context(), videoID)
		if err != nil {
			cfg.Logger.Error().Err(err).Str("video_id", videoID).Msg("list clips")
			WriteError(w, http.StatusInternalServerError, "failed to list clips", "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, ClipsResponse{VideoID: videoID, Clips: list})
	}
}

func approvalHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Store == nil {
			WriteError(w, http.StatusServiceUnavailable, "clip store not configured", "UNAVAILABLE")
			return
		}
		var req ApprovalRequest
		if err := decodeBody(w, r, &req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), "BAD_REQUEST")
			return
		}
		if req.Approved == nil {
			WriteError(w, http.StatusBadRequest, "approved is required", "BAD_REQUEST")
			return
		}

		clipID := chi.URLParam(r, "clipID")
		c, err := cfg.Store.SetApproved(r.Context(), clipID, *req.Approved, req.Notes)
		switch {
		case errors.Is(err, ports.ErrNotFound):
			WriteError(w, http.StatusNotFound, "clip not found", "NOT_FOUND")
			return
		case err != nil:
			cfg.Logger.Error().Err(err).Str("clip_id", clipID).Msg("set approval")
			WriteError(w, http.StatusInternalServerError, "failed to update clip", "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, c)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
