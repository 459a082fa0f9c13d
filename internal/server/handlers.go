package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/topoviz/pkg/buildinfo"
	"github.com/matzehuels/topoviz/pkg/errors"
	"github.com/matzehuels/topoviz/pkg/highlight"
	"github.com/matzehuels/topoviz/pkg/pathquery"
	"github.com/matzehuels/topoviz/pkg/pipeline"
	"github.com/matzehuels/topoviz/pkg/render"
	"github.com/matzehuels/topoviz/pkg/selection"
	"github.com/matzehuels/topoviz/pkg/session"
)

var validate = validator.New()

// maxBody bounds request bodies.
const maxBody = 1 << 20

// =============================================================================
// Request and response types
// =============================================================================

type createSessionRequest struct {
	Collection string `json:"collection" validate:"required,max=128"`
	Mode       string `json:"mode" validate:"omitempty,oneof=free sequential workload"`
}

type tapRequest struct {
	// Vertex is the tapped vertex id. Empty is a background tap.
	Vertex string `json:"vertex" validate:"max=512"`
}

type modeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=free sequential workload"`
}

type constraintRequest struct {
	Constraint string `json:"constraint" validate:"omitempty,max=32"`
}

type sessionResponse struct {
	ID        string          `json:"id"`
	ExpiresAt time.Time       `json:"expires_at"`
	State     selection.State `json:"state"`
	Marks     highlight.Marks `json:"marks"`
}

type collectionsResponse struct {
	Collections []string `json:"collections"`
}

type runsResponse struct {
	Runs []selection.WorkloadRun `json:"runs"`
}

func newSessionResponse(sess *session.Session, st selection.State) sessionResponse {
	return sessionResponse{
		ID:        sess.ID,
		ExpiresAt: sess.ExpiresAt,
		State:     st,
		Marks:     sess.Controller.Marks(),
	}
}

// decode reads a JSON body into v and validates it.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return errors.New(errors.ErrCodeInvalidInput, "%s", describe(e))
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}

func describe(e validator.FieldError) string {
	field := strings.ToLower(e.Field())
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", field, e.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, e.Tag())
	}
}

// =============================================================================
// Service endpoints
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleStyles(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.runner.Styles)
}

func (s *Server) handleCollections(w http.ResponseWriter, r *http.Request) {
	names, err := s.runner.Collections(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	s.writeJSON(w, http.StatusOK, collectionsResponse{Collections: names})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	s.serveLayout(w, r, chi.URLParam(r, "collection"), highlight.Marks{})
}

// serveLayout lays out collection with marks applied and writes it in the
// format named by the query string.
func (s *Server) serveLayout(w http.ResponseWriter, r *http.Request, collection string, marks highlight.Marks) {
	q := r.URL.Query()
	format, err := render.ParseFormat(q.Get("format"))
	if q.Get("format") == "" {
		format, err = render.FormatJSON, nil
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	labels, _ := strconv.ParseBool(q.Get("labels"))
	refresh, _ := strconv.ParseBool(q.Get("refresh"))

	opts := pipeline.Options{
		Collection: collection,
		Variant:    q.Get("variant"),
		Refresh:    refresh,
		Formats:    []string{string(format)},
		Labels:     labels,
		Marks:      marks,
		Logger:     s.logger,
	}
	if v := q.Get("visible"); v != "" {
		opts.Visible = strings.Split(v, ",")
	}
	if v := q.Get("scale"); v != "" {
		if opts.Scale, err = strconv.ParseFloat(v, 64); err != nil {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid scale %q", v))
			return
		}
	}

	res, err := s.runner.Layout(r.Context(), collection, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if format == render.FormatJSON {
		s.writeJSON(w, http.StatusOK, res.Layout)
		return
	}
	artifacts, err := s.runner.Render(r.Context(), res.Layout, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[string(format)])
}

func contentType(f render.Format) string {
	switch f {
	case render.FormatDOT:
		return "text/vnd.graphviz"
	case render.FormatSVG:
		return "image/svg+xml"
	case render.FormatPDF:
		return "application/pdf"
	case render.FormatPNG:
		return "image/png"
	default:
		return "application/json"
	}
}

// =============================================================================
// Sessions
// =============================================================================

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := errors.ValidateCollectionName(req.Collection); err != nil {
		s.writeError(w, err)
		return
	}
	mode, err := selection.ParseMode(req.Mode)
	if err != nil {
		s.writeError(w, err)
		return
	}

	m, err := s.runner.Model(r.Context(), req.Collection, false)
	if err != nil {
		s.writeError(w, err)
		return
	}
	ctrl, err := selection.New(m, selection.Options{
		Collection:        req.Collection,
		Querier:           s.querier,
		Store:             selection.NewMemoryStore(nil, s.opts.RunHistory),
		Mode:              mode,
		Concurrency:       s.opts.Concurrency,
		Direction:         s.opts.Direction,
		ExcludedCountries: s.opts.ExcludedCountries,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	sess, err := s.sessions.Create(req.Collection, ctrl)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "create session"))
		return
	}
	s.logger.Info("session created", "collection", req.Collection, "mode", mode, "vertices", m.Len())
	s.writeJSON(w, http.StatusCreated, newSessionResponse(sess, ctrl.State()))
}

// session resolves the {id} URL parameter. It writes the error response
// and returns nil when the session is gone.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *session.Session {
	id := chi.URLParam(r, "id")
	sess, err := s.sessions.Get(id)
	switch {
	case err == nil:
		return sess
	case stderrors.Is(err, session.ErrExpired):
		s.writeError(w, errors.New(errors.ErrCodeSessionNotFound, "session expired"))
	default:
		s.writeError(w, errors.New(errors.ErrCodeSessionNotFound, "session not found"))
	}
	return nil
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	s.writeJSON(w, http.StatusOK, newSessionResponse(sess, sess.Controller.State()))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, errors.New(errors.ErrCodeSessionNotFound, "session not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTap(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var req tapRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	st, err := sess.Controller.Tap(req.Vertex)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newSessionResponse(sess, st))
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var req modeRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	mode, err := selection.ParseMode(req.Mode)
	if err != nil {
		s.writeError(w, err)
		return
	}
	st, err := sess.Controller.SetMode(mode)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newSessionResponse(sess, st))
}

// handleConstraint runs the free-mode path query. A query that completes
// without a path is not an error: the state carries no_path.
func (s *Server) handleConstraint(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var req constraintRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	st, err := sess.Controller.ChooseConstraint(r.Context(), pathquery.Constraint(req.Constraint))
	if err != nil && !errors.Is(err, errors.ErrCodePathNotFound) {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newSessionResponse(sess, st))
}

func (s *Server) handleCompute(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	run, err := sess.Controller.Compute(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("workload computed",
		"collection", run.Collection,
		"queries", run.Queries(),
		"failures", len(run.Failures),
		"duration", run.Duration)
	s.writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleSessionLayout(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	s.serveLayout(w, r, sess.Collection, sess.Controller.Marks())
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	runs := sess.Controller.Store().List()
	if runs == nil {
		runs = []selection.WorkloadRun{}
	}
	s.writeJSON(w, http.StatusOK, runsResponse{Runs: runs})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	run, ok := sess.Controller.Store().Get(chi.URLParam(r, "run"))
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "workload run %q not found", chi.URLParam(r, "run")))
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}
