package forms

import (
	"fmt"
	"maps"
	"strings"
)

// Field names a single input on one of the submission forms.
type Field string

const (
	FieldProjectSoftware Field = "projectSoftware"
	FieldProjectType     Field = "projectType"
	FieldProjectName     Field = "projectName"
	FieldSnippetName     Field = "snippetName"
	FieldDescription     Field = "description"
	FieldSingleProject   Field = "singleProject"
	FieldCodeBlock       Field = "codeBlock"
	FieldCodeBlockOne    Field = "codeBlockOne"
	FieldCodeBlockTwo    Field = "codeBlockTwo"
	FieldAudioUpload     Field = "audioUpload"
	FieldYouTubeLink     Field = "youtubeLink"
	FieldTags            Field = "tags"

	FieldUsername     Field = "username"
	FieldEmail        Field = "email"
	FieldPasswordOne  Field = "passwordOne"
	FieldPasswordTwo  Field = "passwordTwo"
	FieldPortfolioURL Field = "portfolioUrl"
	FieldMastodonURL  Field = "mastodonUrl"
	FieldBlueskyURL   Field = "blueskyUrl"
	FieldLinkedinURL  Field = "linkedinUrl"
)

// File describes an uploaded file. Only the descriptor is validated; the
// bytes never reach the form layer.
type File struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType,omitempty"`
}

// Values holds the current input of a form keyed by field. A missing key reads
// as the field's empty default.
//
// Supported value types are string, bool, File and Secret.
type Values map[Field]any

// Text returns the string value of field, or "" when the field is unset or
// holds a non-text value. Secrets are never returned as text.
func (v Values) Text(field Field) string {
	if s, ok := v[field].(string); ok {
		return s
	}
	return ""
}

// Secret returns the secret stored for field. Plain strings are wrapped so
// callers always compare through Reveal.
func (v Values) Secret(field Field) Secret {
	switch value := v[field].(type) {
	case Secret:
		return value
	case string:
		return NewSecret(value)
	default:
		return Secret{}
	}
}

// File returns the file descriptor stored for field and whether one is present.
func (v Values) File(field Field) (File, bool) {
	switch value := v[field].(type) {
	case File:
		return value, strings.TrimSpace(value.Name) != ""
	case *File:
		if value == nil {
			return File{}, false
		}
		return *value, strings.TrimSpace(value.Name) != ""
	default:
		return File{}, false
	}
}

// Clone returns a shallow copy of the values.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	maps.Copy(out, v)
	return out
}

func checkValue(field Field, value any) (any, error) {
	switch typed := value.(type) {
	case string:
		if field == FieldPasswordOne || field == FieldPasswordTwo {
			return NewSecret(typed), nil
		}
		return typed, nil
	case bool, Secret:
		return typed, nil
	case File:
		return typed, nil
	case *File:
		if typed == nil {
			return File{}, nil
		}
		return *typed, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("forms: unsupported value type %T for field %q", value, field)
	}
}
