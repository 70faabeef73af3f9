package forms

// Variant selects one of the submission forms.
type Variant int

const (
	ProjectForm Variant = iota
	SnippetForm
	RegistrationForm
)

// String returns the variant name used in metrics and logs.
func (v Variant) String() string {
	switch v {
	case ProjectForm:
		return "project"
	case SnippetForm:
		return "snippet"
	case RegistrationForm:
		return "registration"
	default:
		return "unknown"
	}
}

// Fields lists the inputs a variant accepts, in render order.
func (v Variant) Fields() []Field {
	switch v {
	case ProjectForm:
		return []Field{
			FieldProjectSoftware, FieldProjectType, FieldProjectName, FieldDescription,
			FieldSingleProject, FieldCodeBlockOne, FieldCodeBlockTwo,
			FieldAudioUpload, FieldYouTubeLink, FieldTags,
		}
	case SnippetForm:
		return []Field{
			FieldProjectSoftware, FieldSnippetName, FieldDescription, FieldCodeBlock,
			FieldAudioUpload, FieldYouTubeLink, FieldTags,
		}
	case RegistrationForm:
		return []Field{
			FieldUsername, FieldEmail, FieldPasswordOne, FieldPasswordTwo,
			FieldPortfolioURL, FieldMastodonURL, FieldBlueskyURL, FieldLinkedinURL,
		}
	default:
		return nil
	}
}

// Accepts reports whether field belongs to the variant.
func (v Variant) Accepts(field Field) bool {
	for _, f := range v.Fields() {
		if f == field {
			return true
		}
	}
	return false
}

func (v Variant) hasDiscriminant(field Field) bool {
	switch field {
	case FieldProjectSoftware:
		return v == ProjectForm || v == SnippetForm
	case FieldProjectType:
		return v == ProjectForm
	default:
		return false
	}
}
