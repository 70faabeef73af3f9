package web

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Its-donkey/algorave-share/internal/forms"
	"github.com/Its-donkey/algorave-share/internal/metrics"
	"github.com/Its-donkey/algorave-share/internal/store"
	"github.com/Its-donkey/algorave-share/logging"
)

const defaultMaxUpload = 50 << 20

// Options configures the form server.
type Options struct {
	TemplatesDir   string
	Sink           forms.Sink
	Metrics        *metrics.Recorder
	Logger         *logging.Logger
	MaxUploadBytes int64
}

// Server renders the submission forms and handles their posts.
type Server struct {
	templates map[string]*template.Template
	sink      forms.Sink
	metrics   *metrics.Recorder
	logger    *logging.Logger
	maxUpload int64
}

// New loads the templates and builds a Server.
func New(opts Options) (*Server, error) {
	templates, err := loadTemplates(opts.TemplatesDir)
	if err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUpload
	}
	return &Server{
		templates: templates,
		sink:      opts.Sink,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		maxUpload: opts.MaxUploadBytes,
	}, nil
}

// Register mounts the form routes on mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/", s.handleHome)
	mux.HandleFunc("/submit/project", s.handleForm(forms.ProjectForm))
	mux.HandleFunc("/submit/snippet", s.handleForm(forms.SnippetForm))
	mux.HandleFunc("/register", s.handleForm(forms.RegistrationForm))
}

// Handler returns a mux serving only the form routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return mux
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, pagesByVariant[forms.ProjectForm].action, http.StatusSeeOther)
}

func (s *Server) handleForm(variant forms.Variant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.showForm(w, r, variant)
		case http.MethodPost:
			s.postForm(w, r, variant)
		default:
			w.Header().Set("Allow", "GET, POST")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func (s *Server) showForm(w http.ResponseWriter, r *http.Request, variant forms.Variant) {
	engine := forms.NewEngine(variant, s.sink)
	query := r.URL.Query()
	if variant != forms.RegistrationForm {
		_ = engine.SetDiscriminant(forms.FieldProjectSoftware, query.Get("software"))
	}
	if variant == forms.ProjectForm {
		_ = engine.SetDiscriminant(forms.FieldProjectType, query.Get("type"))
	}
	data := buildPageData(engine)
	if query.Get("submitted") == "1" {
		data.ResultState = "success"
		data.ResultMessage = query.Get("message")
	}
	s.render(w, variant, data, http.StatusOK)
}

func (s *Server) postForm(w http.ResponseWriter, r *http.Request, variant forms.Variant) {
	log := s.logger.WithRequestID(logging.RequestIDFromContext(r.Context())).
		WithCategory("forms").
		WithField("form", variant.String())

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+1<<20)
	engine := forms.NewEngine(variant, s.sink)
	if err := s.populate(engine, r); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "upload too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	if r.PostFormValue("action") == "refresh" {
		s.render(w, variant, buildPageData(engine), http.StatusOK)
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
		s.render(w, variant, buildPageData(engine), http.StatusUnprocessableEntity)
	case err != nil:
		s.metrics.Submission(variant, metrics.OutcomeFailed)
		data := buildPageData(engine)
		data.ResultState = "error"
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrConflict) {
			status = http.StatusConflict
			data.ResultMessage = "That username or email is already registered."
			log.Warn("submission conflicts with existing record")
		} else {
			data.ResultMessage = "We couldn't save your submission. Please try again."
			log.Error("submission failed", err)
		}
		s.render(w, variant, data, status)
	default:
		s.metrics.Submission(variant, metrics.OutcomeAccepted)
		s.metrics.ObserveSink(variant, time.Since(started))
		log.WithField("id", receipt.ID).Info("submission accepted")
		target := pagesByVariant[variant].action + "?submitted=1&message=" + url.QueryEscape(receipt.Message)
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

// populate copies the posted fields into engine. Only the descriptor of an
// uploaded audio file is kept; its bytes are discarded.
func (s *Server) populate(engine *forms.Engine, r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(s.maxUpload); err != nil {
			return err
		}
		defer r.MultipartForm.RemoveAll()
	} else if err := r.ParseForm(); err != nil {
		return err
	}

	for _, field := range engine.Variant().Fields() {
		name := string(field)
		raw := r.PostFormValue(name)
		var err error
		switch field {
		case forms.FieldProjectSoftware, forms.FieldProjectType:
			err = engine.SetDiscriminant(field, raw)
		case forms.FieldAudioUpload:
			err = setUpload(engine, r)
		case forms.FieldPasswordOne, forms.FieldPasswordTwo:
			if raw != "" {
				err = engine.SetValue(field, forms.NewSecret(raw))
			}
		default:
			if raw != "" {
				err = engine.SetValue(field, raw)
			}
		}
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
	}
	return nil
}

func setUpload(engine *forms.Engine, r *http.Request) error {
	if r.MultipartForm == nil {
		return nil
	}
	file, header, err := r.FormFile(string(forms.FieldAudioUpload))
	if errors.Is(err, http.ErrMissingFile) {
		return nil
	}
	if err != nil {
		return err
	}
	file.Close()
	if header.Filename == "" {
		return nil
	}
	return engine.SetValue(forms.FieldAudioUpload, forms.File{
		Name:        header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
	})
}

func (s *Server) render(w http.ResponseWriter, variant forms.Variant, data pageData, status int) {
	tmpl := s.templates[pagesByVariant[variant].name]
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		s.logger.Error("web", "render form", err, map[string]any{"form": variant.String()})
	}
}
