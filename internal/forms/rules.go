package forms

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	MaxNameLength        = 200
	MaxUsernameLength    = 50
	MinPasswordLength    = 8
	passwordSpecialChars = "!@#$%^&*()-_=+[]{}|;:'\",.<>/?`~\\"
)

// AllowedAudioExtensions is the upload allow-list, compared case-insensitively.
var AllowedAudioExtensions = []string{"wav", "mp3", "flac", "aac", "ogg"}

const (
	msgSoftwareProject  = "Please select the project software"
	msgSoftwareSnippet  = "Please select a project software"
	msgProjectType      = "Please select a project type"
	msgDescription      = "Description is required"
	msgCode             = "Don't forget to add your code!"
	msgAudioType        = "Invalid file type. Only WAV, MP3, FLAC, AAC and OGG files are allowed."
	msgYouTubeURL       = "Are you sure that URL is correct?"
	msgProfileURL       = "Are you sure the URL is correct?"
	msgUsernameRequired = "A username is required"
	msgUsernameFormat   = "Username may only contain letters, numbers, dashes and underscores"
	msgEmailRequired    = "An email is required"
	msgEmailFormat      = "Please enter a valid email address"
	msgPasswordRequired = "A password is required"
	msgPasswordShort    = "Password must be at least 8 characters"
	msgPasswordWeak     = "Password must contain an uppercase letter, a lowercase letter, a number and a special character"
	msgConfirmRequired  = "Please confirm your password"
	msgPasswordMismatch = "Passwords do not match"
)

var (
	fieldValidate   = validator.New()
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

type rule struct {
	field Field
	// conditional rules only run while IsRequired holds for the field.
	conditional bool
	check       func(Values, Discriminants) (FieldError, bool)
}

// ValidateAll evaluates every applicable rule of the variant against values.
// It never short-circuits, so one call reports every failing field. It is a
// pure function of its inputs.
func ValidateAll(variant Variant, values Values, d Discriminants) FieldErrors {
	errs := make(FieldErrors)
	for _, r := range rulesFor(variant) {
		if r.conditional && !IsRequired(variant, r.field, d) {
			continue
		}
		if fe, failed := r.check(values, d); failed {
			errs[r.field] = fe
		}
	}
	return errs
}

// ValidateField runs the rules for a single field, used for fields that
// validate as soon as they change.
func ValidateField(variant Variant, field Field, values Values, d Discriminants) (FieldError, bool) {
	for _, r := range rulesFor(variant) {
		if r.field != field {
			continue
		}
		if r.conditional && !IsRequired(variant, r.field, d) {
			return FieldError{}, false
		}
		return r.check(values, d)
	}
	return FieldError{}, false
}

func rulesFor(variant Variant) []rule {
	switch variant {
	case ProjectForm:
		return []rule{
			{field: FieldProjectSoftware, check: softwareSelected(msgSoftwareProject)},
			{field: FieldProjectType, check: projectTypeSelected},
			{field: FieldProjectName, check: nameRule(FieldProjectName, "A project name is required", "Project name")},
			{field: FieldDescription, conditional: true, check: requiredText(FieldDescription, msgDescription)},
			{field: FieldSingleProject, conditional: true, check: requiredText(FieldSingleProject, msgCode)},
			{field: FieldCodeBlockOne, conditional: true, check: requiredText(FieldCodeBlockOne, msgCode)},
			{field: FieldCodeBlockTwo, conditional: true, check: requiredText(FieldCodeBlockTwo, msgCode)},
			{field: FieldAudioUpload, check: audioUpload},
			{field: FieldYouTubeLink, check: optionalURL(FieldYouTubeLink, msgYouTubeURL)},
			{field: FieldTags, check: tagsRule},
		}
	case SnippetForm:
		return []rule{
			{field: FieldProjectSoftware, check: softwareSelected(msgSoftwareSnippet)},
			{field: FieldSnippetName, check: nameRule(FieldSnippetName, "A snippet title is required", "Snippet title")},
			{field: FieldDescription, conditional: true, check: requiredText(FieldDescription, msgDescription)},
			{field: FieldCodeBlock, conditional: true, check: requiredText(FieldCodeBlock, msgCode)},
			{field: FieldAudioUpload, check: audioUpload},
			{field: FieldYouTubeLink, check: optionalURL(FieldYouTubeLink, msgYouTubeURL)},
			{field: FieldTags, check: tagsRule},
		}
	case RegistrationForm:
		return []rule{
			{field: FieldUsername, check: usernameRule},
			{field: FieldEmail, check: emailRule},
			{field: FieldPasswordOne, check: passwordRule},
			{field: FieldPasswordTwo, check: confirmRule},
			{field: FieldPortfolioURL, check: optionalURL(FieldPortfolioURL, msgProfileURL)},
			{field: FieldMastodonURL, check: optionalURL(FieldMastodonURL, msgProfileURL)},
			{field: FieldBlueskyURL, check: optionalURL(FieldBlueskyURL, msgProfileURL)},
			{field: FieldLinkedinURL, check: optionalURL(FieldLinkedinURL, msgProfileURL)},
		}
	default:
		return nil
	}
}

func fail(kind ErrorKind, message string) (FieldError, bool) {
	return FieldError{Kind: kind, Message: message}, true
}

func pass() (FieldError, bool) {
	return FieldError{}, false
}

func softwareSelected(message string) func(Values, Discriminants) (FieldError, bool) {
	return func(_ Values, d Discriminants) (FieldError, bool) {
		if d.Software == SoftwareUnset {
			return fail(KindRequired, message)
		}
		return pass()
	}
}

func projectTypeSelected(_ Values, d Discriminants) (FieldError, bool) {
	if d.Type == ProjectTypeUnset {
		return fail(KindRequired, msgProjectType)
	}
	return pass()
}

func nameRule(field Field, required, label string) func(Values, Discriminants) (FieldError, bool) {
	return func(values Values, _ Discriminants) (FieldError, bool) {
		trimmed := strings.TrimSpace(values.Text(field))
		if trimmed == "" {
			return fail(KindRequired, required)
		}
		if utf8.RuneCountInString(trimmed) > MaxNameLength {
			return fail(KindLength, fmt.Sprintf("%s must not be longer than %d characters", label, MaxNameLength))
		}
		return pass()
	}
}

func requiredText(field Field, message string) func(Values, Discriminants) (FieldError, bool) {
	return func(values Values, _ Discriminants) (FieldError, bool) {
		if strings.TrimSpace(values.Text(field)) == "" {
			return fail(KindRequired, message)
		}
		return pass()
	}
}

func audioUpload(values Values, _ Discriminants) (FieldError, bool) {
	file, ok := values.File(FieldAudioUpload)
	if !ok {
		return pass()
	}
	if !AllowedAudioFile(file.Name) {
		return fail(KindFormat, msgAudioType)
	}
	return pass()
}

// AudioExtension returns the lower-cased text after the last "." of the base
// name. A name without a dot is its own extension.
func AudioExtension(name string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if idx := strings.LastIndex(base, "."); idx >= 0 {
		base = base[idx+1:]
	}
	return strings.ToLower(base)
}

// AllowedAudioFile reports whether name carries an allow-listed extension.
func AllowedAudioFile(name string) bool {
	ext := AudioExtension(name)
	for _, allowed := range AllowedAudioExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func optionalURL(field Field, message string) func(Values, Discriminants) (FieldError, bool) {
	return func(values Values, _ Discriminants) (FieldError, bool) {
		trimmed := strings.TrimSpace(values.Text(field))
		if trimmed == "" {
			return pass()
		}
		if !IsAbsoluteURL(trimmed) {
			return fail(KindFormat, message)
		}
		return pass()
	}
}

// IsAbsoluteURL reports whether raw parses as a URL with both scheme and host.
func IsAbsoluteURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return parsed.IsAbs() && parsed.Host != ""
}

func tagsRule(values Values, _ Discriminants) (FieldError, bool) {
	if err := CheckTags(ParseTags(values.Text(FieldTags))); err != "" {
		return fail(KindLength, err)
	}
	return pass()
}

func usernameRule(values Values, _ Discriminants) (FieldError, bool) {
	trimmed := strings.TrimSpace(values.Text(FieldUsername))
	switch {
	case trimmed == "":
		return fail(KindRequired, msgUsernameRequired)
	case utf8.RuneCountInString(trimmed) > MaxUsernameLength:
		return fail(KindLength, fmt.Sprintf("Username must not be longer than %d characters", MaxUsernameLength))
	case !usernamePattern.MatchString(trimmed):
		return fail(KindFormat, msgUsernameFormat)
	}
	return pass()
}

func emailRule(values Values, _ Discriminants) (FieldError, bool) {
	trimmed := strings.TrimSpace(values.Text(FieldEmail))
	if trimmed == "" {
		return fail(KindRequired, msgEmailRequired)
	}
	if err := fieldValidate.Var(trimmed, "email"); err != nil {
		return fail(KindFormat, msgEmailFormat)
	}
	return pass()
}

func passwordRule(values Values, _ Discriminants) (FieldError, bool) {
	secret := values.Secret(FieldPasswordOne)
	if secret.IsZero() {
		return fail(KindRequired, msgPasswordRequired)
	}
	if utf8.RuneCountInString(secret.Reveal()) < MinPasswordLength {
		return fail(KindLength, msgPasswordShort)
	}
	if !StrongPassword(secret.Reveal()) {
		return fail(KindFormat, msgPasswordWeak)
	}
	return pass()
}

func confirmRule(values Values, _ Discriminants) (FieldError, bool) {
	confirm := values.Secret(FieldPasswordTwo)
	if confirm.IsZero() {
		return fail(KindRequired, msgConfirmRequired)
	}
	if !confirm.Equal(values.Secret(FieldPasswordOne)) {
		return fail(KindMismatch, msgPasswordMismatch)
	}
	return pass()
}

// StrongPassword reports whether password has an upper-case letter, a
// lower-case letter, a digit and one of the accepted special characters.
func StrongPassword(password string) bool {
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecialChars, r):
			special = true
		}
	}
	return upper && lower && digit && special
}
