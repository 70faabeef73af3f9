package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Its-donkey/algorave-share/internal/forms"
	"github.com/Its-donkey/algorave-share/internal/metadata"
	"github.com/Its-donkey/algorave-share/internal/metrics"
	"github.com/Its-donkey/algorave-share/internal/store"
	"github.com/Its-donkey/algorave-share/logging"
)

const maxBodyBytes = 1 << 20

// Server exposes the JSON API backed by the store.
type Server struct {
	store    store.Store
	sink     forms.Sink
	previews *metadata.Service
	metrics  *metrics.Recorder
	logger   *logging.Logger
	validate *validator.Validate
}

// Option mutates server configuration during construction.
type Option func(*Server)

// WithSink overrides the sink that receives accepted submissions.
func WithSink(sink forms.Sink) Option {
	return func(s *Server) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithPreviews enables GET /api/preview.
func WithPreviews(previews *metadata.Service) Option {
	return func(s *Server) {
		s.previews = previews
	}
}

// WithMetrics records submission outcomes and serves /metrics.
func WithMetrics(recorder *metrics.Recorder) Option {
	return func(s *Server) {
		s.metrics = recorder
	}
}

// WithLogger sets the logger used for submission events.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a Server with the provided store.
func New(st store.Store, opts ...Option) *Server {
	s := &Server{
		store:    st,
		sink:     store.NewSink(st, 0),
		logger:   logging.Discard(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Handler returns the HTTP handler that serves the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return addCORS(mux)
}

// Register mounts the API routes on mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.Handle("/api/projects", http.HandlerFunc(s.handleProjects))
	mux.Handle("/api/projects/", http.HandlerFunc(s.handleProjectByID))
	mux.Handle("/api/snippets", http.HandlerFunc(s.handleSnippets))
	mux.Handle("/api/register", http.HandlerFunc(s.handleRegister))
	mux.Handle("/api/tags", http.HandlerFunc(s.handleTags))
	mux.Handle("/api/preview", http.HandlerFunc(s.handlePreview))
	mux.Handle("/healthz", http.HandlerFunc(s.handleHealth))
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		filter, err := listFilter(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		projects, err := s.store.ListProjects(r.Context(), filter)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		respondJSON(w, http.StatusOK, projects)
	case http.MethodPost:
		var payload projectRequest
		if !s.decodeValid(w, r, &payload) {
			return
		}
		s.submit(w, r, forms.ProjectForm, func(e *forms.Engine) error {
			return firstErr(
				e.SetDiscriminant(forms.FieldProjectSoftware, payload.Software),
				e.SetDiscriminant(forms.FieldProjectType, payload.Type),
				setText(e, forms.FieldProjectName, payload.Name),
				setText(e, forms.FieldDescription, payload.Description),
				setText(e, forms.FieldSingleProject, payload.Code),
				setText(e, forms.FieldCodeBlockOne, payload.CodeBefore),
				setText(e, forms.FieldCodeBlockTwo, payload.CodeAfter),
				setFile(e, payload.Audio),
				setText(e, forms.FieldYouTubeLink, payload.YouTubeLink),
				setText(e, forms.FieldTags, payload.Tags),
			)
		})
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleProjectByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/projects/"), "/")
	if id == "" || strings.Contains(id, "/") {
		respondJSON(w, http.StatusNotFound, errorPayload{Message: "Project not found"})
		return
	}
	project, err := s.store.GetProject(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondJSON(w, http.StatusNotFound, errorPayload{Message: "Project not found"})
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, project)
}

func (s *Server) handleSnippets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		filter, err := listFilter(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		snippets, err := s.store.ListSnippets(r.Context(), filter)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		respondJSON(w, http.StatusOK, snippets)
	case http.MethodPost:
		var payload snippetRequest
		if !s.decodeValid(w, r, &payload) {
			return
		}
		s.submit(w, r, forms.SnippetForm, func(e *forms.Engine) error {
			return firstErr(
				e.SetDiscriminant(forms.FieldProjectSoftware, payload.Software),
				setText(e, forms.FieldSnippetName, payload.Name),
				setText(e, forms.FieldDescription, payload.Description),
				setText(e, forms.FieldCodeBlock, payload.Code),
				setFile(e, payload.Audio),
				setText(e, forms.FieldYouTubeLink, payload.YouTubeLink),
				setText(e, forms.FieldTags, payload.Tags),
			)
		})
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var payload registerRequest
	if !s.decodeValid(w, r, &payload) {
		return
	}
	s.submit(w, r, forms.RegistrationForm, func(e *forms.Engine) error {
		return firstErr(
			setText(e, forms.FieldUsername, payload.Username),
			setText(e, forms.FieldEmail, payload.Email),
			setSecret(e, forms.FieldPasswordOne, payload.PasswordOne),
			setSecret(e, forms.FieldPasswordTwo, payload.PasswordTwo),
			setText(e, forms.FieldPortfolioURL, payload.PortfolioURL),
			setText(e, forms.FieldMastodonURL, payload.MastodonURL),
			setText(e, forms.FieldBlueskyURL, payload.BlueskyURL),
			setText(e, forms.FieldLinkedinURL, payload.LinkedinURL),
		)
	})
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	tags, err := s.store.ListTags(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, tags)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	if s.previews == nil {
		respondJSON(w, http.StatusServiceUnavailable, errorPayload{Message: "Link previews are disabled"})
		return
	}
	preview, err := s.previews.Fetch(r.Context(), r.URL.Query().Get("url"))
	switch {
	case errors.Is(err, metadata.ErrInvalidURL), errors.Is(err, metadata.ErrBlockedAddress):
		respondError(w, http.StatusBadRequest, err)
	case err != nil:
		respondError(w, http.StatusBadGateway, err)
	default:
		respondJSON(w, http.StatusOK, preview)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	respondJSON(w, http.StatusOK, healthPayload{Status: "ok"})
}

// submit mounts a fresh engine, applies the request values and runs Submit,
// translating the outcome into a response.
func (s *Server) submit(w http.ResponseWriter, r *http.Request, variant forms.Variant, apply func(*forms.Engine) error) {
	log := s.logger.WithRequestID(logging.RequestIDFromContext(r.Context())).
		WithCategory("forms").
		WithField("form", variant.String())

	engine := forms.NewEngine(variant, s.sink)
	if err := apply(engine); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	started := time.Now()
	receipt, err := engine.Submit(r.Context())
	var invalid *forms.ValidationError
	switch {
	case errors.As(err, &invalid):
		s.metrics.Submission(variant, metrics.OutcomeInvalid)
		s.metrics.FieldErrors(variant, invalid.Errors)
		log.WithField("fields", invalid.Errors.Fields()).Info("submission rejected")
		respondJSON(w, http.StatusUnprocessableEntity, validationPayload{
			Message: "Please correct the highlighted fields.",
			Errors:  invalid.Errors.Messages(),
		})
	case errors.Is(err, store.ErrConflict):
		s.metrics.Submission(variant, metrics.OutcomeFailed)
		log.Warn("submission conflicts with existing record")
		respondJSON(w, http.StatusConflict, errorPayload{Message: "That username or email is already registered."})
	case err != nil:
		s.metrics.Submission(variant, metrics.OutcomeFailed)
		log.Error("submission failed", err)
		respondError(w, http.StatusInternalServerError, err)
	default:
		s.metrics.Submission(variant, metrics.OutcomeAccepted)
		s.metrics.ObserveSink(variant, time.Since(started))
		log.WithField("id", receipt.ID).Info("submission accepted")
		respondJSON(w, http.StatusCreated, successPayload{Message: receipt.Message, ID: receipt.ID})
	}
}

func (s *Server) decodeValid(w http.ResponseWriter, r *http.Request, target any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := decodeJSON(r, target); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return false
	}
	if err := s.validate.Struct(target); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			respondJSON(w, http.StatusBadRequest, errorPayload{
				Message: fmt.Sprintf("field %s exceeds the allowed size", verrs[0].Field()),
			})
			return false
		}
		respondError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func setText(e *forms.Engine, field forms.Field, value string) error {
	if value == "" {
		return nil
	}
	return e.SetValue(field, value)
}

func setSecret(e *forms.Engine, field forms.Field, value string) error {
	if value == "" {
		return nil
	}
	return e.SetValue(field, forms.NewSecret(value))
}

func setFile(e *forms.Engine, file *fileRequest) error {
	if file == nil {
		return nil
	}
	return e.SetValue(forms.FieldAudioUpload, forms.File{Name: file.Name, Size: file.Size, ContentType: file.ContentType})
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func listFilter(r *http.Request) (store.ListFilter, error) {
	query := r.URL.Query()
	filter := store.ListFilter{
		Software: strings.TrimSpace(query.Get("software")),
		Tag:      forms.NormalizeTag(query.Get("tag")),
	}
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return store.ListFilter{}, fmt.Errorf("invalid limit %q", raw)
		}
		filter.Limit = limit
	}
	return filter, nil
}

func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, errorPayload{Message: err.Error()})
}

func methodNotAllowed(w http.ResponseWriter, methods ...string) {
	w.Header().Set("Allow", strings.Join(methods, ", "))
	respondJSON(w, http.StatusMethodNotAllowed, errorPayload{Message: "Method Not Allowed"})
}

func addCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
