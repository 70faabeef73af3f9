package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Its-donkey/algorave-share/internal/forms"
)

// Sink persists accepted form submissions into a Store.
type Sink struct {
	store Store
	cost  int
}

// NewSink wraps store as a forms.Sink. A zero cost uses bcrypt.DefaultCost.
func NewSink(store Store, cost int) *Sink {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Sink{store: store, cost: cost}
}

// Accept converts the submission into a record and stores it.
func (s *Sink) Accept(ctx context.Context, submission forms.Submission) (forms.Receipt, error) {
	switch submission.Variant {
	case forms.ProjectForm:
		project, err := s.store.CreateProject(ctx, ProjectFromSubmission(submission))
		if err != nil {
			return forms.Receipt{}, err
		}
		return forms.Receipt{ID: project.ID, Message: "Project shared"}, nil
	case forms.SnippetForm:
		snippet, err := s.store.CreateSnippet(ctx, SnippetFromSubmission(submission))
		if err != nil {
			return forms.Receipt{}, err
		}
		return forms.Receipt{ID: snippet.ID, Message: "Snippet shared"}, nil
	case forms.RegistrationForm:
		user, err := s.userFromSubmission(submission)
		if err != nil {
			return forms.Receipt{}, err
		}
		created, err := s.store.CreateUser(ctx, user)
		if err != nil {
			if errors.Is(err, ErrConflict) {
				return forms.Receipt{}, fmt.Errorf("username or email already registered: %w", err)
			}
			return forms.Receipt{}, err
		}
		return forms.Receipt{ID: created.ID, Message: "Welcome, " + created.Username}, nil
	default:
		return forms.Receipt{}, fmt.Errorf("unsupported form variant %q", submission.Variant)
	}
}

// ProjectFromSubmission maps project form values onto a Project. Only the code
// fields relevant to the selected type are kept. Stored text is trimmed; code
// is kept verbatim.
func ProjectFromSubmission(submission forms.Submission) Project {
	values := submission.Values
	project := Project{
		Name:        strings.TrimSpace(values.Text(forms.FieldProjectName)),
		Description: strings.TrimSpace(values.Text(forms.FieldDescription)),
		Software:    submission.Discriminants.Software.Slug(),
		Type:        submission.Discriminants.Type.Slug(),
		YouTubeLink: strings.TrimSpace(values.Text(forms.FieldYouTubeLink)),
		Tags:        forms.ParseTags(values.Text(forms.FieldTags)),
	}
	switch submission.Discriminants.Type {
	case forms.ProjectTypeFinished:
		project.Code = values.Text(forms.FieldSingleProject)
	case forms.ProjectTypeBeforeAndAfter:
		project.CodeBefore = values.Text(forms.FieldCodeBlockOne)
		project.CodeAfter = values.Text(forms.FieldCodeBlockTwo)
	}
	if file, ok := values.File(forms.FieldAudioUpload); ok {
		project.AudioFile = file.Name
	}
	return project
}

// SnippetFromSubmission maps snippet form values onto a Snippet.
func SnippetFromSubmission(submission forms.Submission) Snippet {
	values := submission.Values
	snippet := Snippet{
		Title:       strings.TrimSpace(values.Text(forms.FieldSnippetName)),
		Description: strings.TrimSpace(values.Text(forms.FieldDescription)),
		Software:    submission.Discriminants.Software.Slug(),
		Code:        values.Text(forms.FieldCodeBlock),
		YouTubeLink: strings.TrimSpace(values.Text(forms.FieldYouTubeLink)),
		Tags:        forms.ParseTags(values.Text(forms.FieldTags)),
	}
	if file, ok := values.File(forms.FieldAudioUpload); ok {
		snippet.AudioFile = file.Name
	}
	return snippet
}

func (s *Sink) userFromSubmission(submission forms.Submission) (User, error) {
	values := submission.Values
	hash, err := bcrypt.GenerateFromPassword([]byte(values.Secret(forms.FieldPasswordOne).Reveal()), s.cost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	return User{
		Username:     strings.TrimSpace(values.Text(forms.FieldUsername)),
		Email:        strings.ToLower(strings.TrimSpace(values.Text(forms.FieldEmail))),
		PasswordHash: hash,
		PortfolioURL: strings.TrimSpace(values.Text(forms.FieldPortfolioURL)),
		MastodonURL:  strings.TrimSpace(values.Text(forms.FieldMastodonURL)),
		BlueskyURL:   strings.TrimSpace(values.Text(forms.FieldBlueskyURL)),
		LinkedinURL:  strings.TrimSpace(values.Text(forms.FieldLinkedinURL)),
	}, nil
}
