package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimeboard/internal/domain"
	"github.com/hamed0406/uptimeboard/internal/probe"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleListWebsites(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r.Context())
	if err != nil {
		s.Logger.Warn("websites_unavailable", zap.Error(err))
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleGetWebsite(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	id := domain.TargetID(chi.URLParam(r, "id"))
	sum, ok := snap.Find(id)
	if !ok {
		writeError(w, http.StatusNotFound, domain.ErrTargetNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap.Stats)
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	rows, err := s.Results.Latest(r.Context())
	if err != nil {
		s.Logger.Warn("latest_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "latest error")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

type addPayload struct {
	URL string `json:"url"`
}

type addResponse struct {
	Website *domain.Summary     `json:"website,omitempty"`
	Target  *domain.Target      `json:"target"`
	Result  *domain.CheckResult `json:"result"`
}

func (s *Server) handleAddWebsite(w http.ResponseWriter, r *http.Request) {
	var p addPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}

	raw := strings.TrimSpace(p.URL)
	if err := domain.ValidateURL(raw); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	norm := domain.NormalizeURL(raw)

	ctx := r.Context()
	if existing, err := s.Targets.GetByURL(ctx, norm); err != nil {
		s.Logger.Warn("add_lookup_error", zap.String("url", norm), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not add")
		return
	} else if existing != nil {
		writeError(w, http.StatusConflict, domain.ErrDuplicateTarget.Error())
		return
	}

	t := &domain.Target{URL: norm, CreatedAt: s.now().UTC()}
	if err := s.Targets.Add(ctx, t); err != nil {
		code := statusFor(err)
		if code == http.StatusInternalServerError {
			s.Logger.Warn("add_error", zap.String("url", norm), zap.Error(err))
		}
		writeError(w, code, err.Error())
		return
	}

	// One synchronous check for immediate feedback.
	out := s.Checker.Check(ctx, norm)
	cr := probe.Record(t.ID, out, s.now())
	if err := s.Results.Append(ctx, cr); err != nil {
		s.Logger.Warn("add_append_error", zap.String("target_id", string(t.ID)), zap.Error(err))
	}

	s.Logger.Info("added_target",
		zap.String("target_id", string(t.ID)),
		zap.String("url", norm),
		zap.Bool("up", out.Success),
		zap.Float64("latency_ms", out.LatencyMS),
	)

	resp := addResponse{Target: t, Result: cr}
	if s.Refresher != nil {
		if snap, err := s.Refresher.RefreshOnce(ctx); err == nil {
			if sum, ok := snap.Find(t.ID); ok {
				resp.Website = &sum
			}
		}
	}
	writeJSON(w, http.StatusCreated, resp)
}
