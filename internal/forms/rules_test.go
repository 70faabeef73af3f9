package forms

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValidateAllIsIdempotent(t *testing.T) {
	values := Values{
		FieldProjectSoftware: "Strudel",
		FieldProjectName:     "",
		FieldYouTubeLink:     "nope",
		FieldAudioUpload:     File{Name: "beat.exe"},
	}
	d := DiscriminantsFrom(values)
	first := ValidateAll(ProjectForm, values, d)
	second := ValidateAll(ProjectForm, values, d)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("ValidateAll not idempotent (-first +second):\n%s", diff)
	}
	if len(first.Fields()) != 5 {
		t.Fatalf("expected every failing rule reported, got %v", first.Messages())
	}
}

func TestProjectTypeSelectsCodeFields(t *testing.T) {
	base := Values{
		FieldProjectSoftware: "Tidal Cycles",
		FieldProjectName:     "Name",
		FieldDescription:     "Desc",
	}

	finished := base.Clone()
	finished[FieldProjectType] = "Finished Project"
	errs := ValidateAll(ProjectForm, finished, DiscriminantsFrom(finished))
	if errs.Message(FieldSingleProject) != "Don't forget to add your code!" {
		t.Fatalf("finished project requires the single code field, got %v", errs.Messages())
	}
	if errs.Message(FieldCodeBlockOne) != "" || errs.Message(FieldCodeBlockTwo) != "" {
		t.Fatalf("finished project must not check before/after fields, got %v", errs.Messages())
	}

	beforeAfter := base.Clone()
	beforeAfter[FieldProjectType] = "Before and After Live Coding Project"
	beforeAfter[FieldCodeBlockOne] = "d1 $ s \"bd\""
	errs = ValidateAll(ProjectForm, beforeAfter, DiscriminantsFrom(beforeAfter))
	if errs.Message(FieldSingleProject) != "" {
		t.Fatalf("before/after must not check the single field, got %v", errs.Messages())
	}
	if errs.Message(FieldCodeBlockOne) != "" {
		t.Fatalf("filled before block should pass, got %v", errs.Messages())
	}
	if errs.Message(FieldCodeBlockTwo) != "Don't forget to add your code!" {
		t.Fatalf("after block is required, got %v", errs.Messages())
	}

	unset := base.Clone()
	errs = ValidateAll(ProjectForm, unset, DiscriminantsFrom(unset))
	for _, f := range []Field{FieldSingleProject, FieldCodeBlockOne, FieldCodeBlockTwo} {
		if errs.Message(f) != "" {
			t.Fatalf("code fields skipped while type is unset, got %v", errs.Messages())
		}
	}
}

func TestDescriptionRequiredOnlyWithSoftware(t *testing.T) {
	for _, software := range []string{"", SoftwareSentinel, "Ableton"} {
		values := Values{FieldProjectSoftware: software}
		errs := ValidateAll(ProjectForm, values, DiscriminantsFrom(values))
		if errs.Message(FieldDescription) != "" {
			t.Fatalf("software %q: description must be optional", software)
		}
		if errs.Message(FieldProjectSoftware) != "Please select the project software" {
			t.Fatalf("software %q: expected selection error, got %q", software, errs.Message(FieldProjectSoftware))
		}
	}
	values := Values{FieldProjectSoftware: "Strudel", FieldDescription: "   "}
	errs := ValidateAll(ProjectForm, values, DiscriminantsFrom(values))
	if errs.Message(FieldDescription) != "Description is required" {
		t.Fatalf("expected description error, got %v", errs.Messages())
	}
}

func TestSnippetMessages(t *testing.T) {
	errs := ValidateAll(SnippetForm, Values{}, Discriminants{})
	want := map[string]string{
		"projectSoftware": "Please select a project software",
		"snippetName":     "A snippet title is required",
		"codeBlock":       "Don't forget to add your code!",
	}
	if diff := cmp.Diff(want, errs.Messages()); diff != "" {
		t.Fatalf("snippet errors mismatch (-want +got):\n%s", diff)
	}
}

func TestAudioExtensionAllowList(t *testing.T) {
	cases := []struct {
		name string
		ok   bool
	}{
		{name: "AUDIO.WAV", ok: true},
		{name: "audio.wav", ok: true},
		{name: "set.live.Mp3", ok: true},
		{name: "C:\\music\\loop.flac", ok: true},
		{name: "clip.mp4", ok: false},
		{name: "noextension", ok: false},
		{name: "trailingdot.", ok: false},
	}
	for _, tc := range cases {
		values := Values{FieldAudioUpload: File{Name: tc.name}}
		errs := ValidateAll(SnippetForm, values, Discriminants{})
		failed := errs.Message(FieldAudioUpload) != ""
		if failed == tc.ok {
			t.Fatalf("%q: expected ok=%v, got error %q", tc.name, tc.ok, errs.Message(FieldAudioUpload))
		}
	}
}

func TestAbsentAudioIsValid(t *testing.T) {
	errs := ValidateAll(ProjectForm, Values{FieldAudioUpload: File{}}, Discriminants{})
	if errs.Message(FieldAudioUpload) != "" {
		t.Fatal("an empty file descriptor is treated as no upload")
	}
}

func TestPasswordConfirmation(t *testing.T) {
	values := Values{
		FieldPasswordOne: NewSecret("Password123!"),
		FieldPasswordTwo: NewSecret("Password123!"),
	}
	errs := ValidateAll(RegistrationForm, values, Discriminants{})
	if errs.Message(FieldPasswordOne) != "" || errs.Message(FieldPasswordTwo) != "" {
		t.Fatalf("matching strong passwords should pass, got %v", errs.Messages())
	}

	values[FieldPasswordTwo] = NewSecret("Different1!")
	errs = ValidateAll(RegistrationForm, values, Discriminants{})
	if got := errs[FieldPasswordTwo]; got.Kind != KindMismatch {
		t.Fatalf("expected mismatch on passwordTwo, got %+v", got)
	}
}

func TestPasswordPolicy(t *testing.T) {
	cases := []struct {
		password string
		want     string
	}{
		{password: "", want: "A password is required"},
		{password: "Ab1!", want: "Password must be at least 8 characters"},
		{password: "password123!", want: msgPasswordWeak},
		{password: "PASSWORD123!", want: msgPasswordWeak},
		{password: "Password!!!!", want: msgPasswordWeak},
		{password: "Password1234", want: msgPasswordWeak},
		{password: "Password123!", want: ""},
	}
	for _, tc := range cases {
		values := Values{FieldPasswordOne: NewSecret(tc.password)}
		got := ValidateAll(RegistrationForm, values, Discriminants{}).Message(FieldPasswordOne)
		if got != tc.want {
			t.Fatalf("password %q: want %q got %q", tc.password, tc.want, got)
		}
	}
}

func TestProfileURLs(t *testing.T) {
	values := Values{
		FieldPortfolioURL: "https://example.com/me",
		FieldMastodonURL:  "mastodon.social/@me",
		FieldBlueskyURL:   "   ",
		FieldLinkedinURL:  "https://",
	}
	errs := ValidateAll(RegistrationForm, values, Discriminants{})
	if errs.Message(FieldPortfolioURL) != "" || errs.Message(FieldBlueskyURL) != "" {
		t.Fatalf("valid and empty urls should pass, got %v", errs.Messages())
	}
	for _, f := range []Field{FieldMastodonURL, FieldLinkedinURL} {
		if errs.Message(f) != "Are you sure the URL is correct?" {
			t.Fatalf("%s: expected url error, got %q", f, errs.Message(f))
		}
	}
}

func TestRegistrationIdentityRules(t *testing.T) {
	values := Values{FieldUsername: "has space", FieldEmail: "not-an-email"}
	errs := ValidateAll(RegistrationForm, values, Discriminants{})
	if errs.Message(FieldUsername) != msgUsernameFormat {
		t.Fatalf("unexpected username error %q", errs.Message(FieldUsername))
	}
	if errs.Message(FieldEmail) != msgEmailFormat {
		t.Fatalf("unexpected email error %q", errs.Message(FieldEmail))
	}

	values = Values{FieldUsername: "livecoder_42", FieldEmail: "coder@example.org"}
	errs = ValidateAll(RegistrationForm, values, Discriminants{})
	if errs.Message(FieldUsername) != "" || errs.Message(FieldEmail) != "" {
		t.Fatalf("expected valid identity, got %v", errs.Messages())
	}
}

func TestVisibleSectionsComposeIndependently(t *testing.T) {
	got := VisibleSections(Discriminants{Software: SoftwareStrudel, Type: ProjectTypeFinished}).List()
	want := []Section{SectionDescription, SectionSingleCode}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("sections mismatch (-want +got):\n%s", diff)
	}
	got = VisibleSections(Discriminants{Type: ProjectTypeBeforeAndAfter}).List()
	if diff := cmp.Diff([]Section{SectionBeforeAfterCode}, got); diff != "" {
		t.Fatalf("sections mismatch (-want +got):\n%s", diff)
	}
	if len(VisibleSections(Discriminants{})) != 0 {
		t.Fatal("no sections visible by default")
	}
}

func TestParseDiscriminants(t *testing.T) {
	if ParseSoftware(" strudel ") != SoftwareStrudel || ParseSoftware(SoftwareSentinel) != SoftwareUnset {
		t.Fatal("software parsing mismatch")
	}
	if ParseProjectType(ProjectTypeSentinel) != ProjectTypeUnset || ParseProjectType(ProjectTypeBeforeAndAfter.String()) != ProjectTypeBeforeAndAfter {
		t.Fatal("project type parsing mismatch")
	}
	if HelperText(SoftwareUnset) != "" || HelperText(SoftwareTidalCycles) == HelperText(SoftwareStrudel) {
		t.Fatal("helper text should be per software")
	}
}

func TestParseTags(t *testing.T) {
	got := ParseTags(" Techno, acid  house,techno,, Live Coding ")
	want := []string{"techno", "acid-house", "live-coding"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}

	many := ""
	for i := 0; i < MaxTags+1; i++ {
		many += fmt.Sprintf("tag%d,", i)
	}
	errs := ValidateAll(SnippetForm, Values{FieldTags: many}, Discriminants{})
	if errs.Message(FieldTags) != "No more than 10 tags" {
		t.Fatalf("expected too many tags error, got %v", errs.Messages())
	}

	long := "ok, " + strings.Repeat("b", MaxTagLength+1)
	errs = ValidateAll(SnippetForm, Values{FieldTags: long}, Discriminants{})
	if errs.Message(FieldTags) != "Tags must be at most 30 characters" {
		t.Fatalf("expected tag length error, got %v", errs.Messages())
	}
	exact := strings.Repeat("é", MaxTagLength)
	errs = ValidateAll(SnippetForm, Values{FieldTags: exact}, Discriminants{})
	if errs.Message(FieldTags) != "" {
		t.Fatalf("a %d rune tag must pass, got %v", MaxTagLength, errs.Messages())
	}
}

func TestNameLengthCountsRunes(t *testing.T) {
	tests := []struct {
		name    string
		variant Variant
		field   Field
		value   string
		want    string
	}{
		{"project 200 ascii", ProjectForm, FieldProjectName, strings.Repeat("a", 200), ""},
		{"project 200 runes", ProjectForm, FieldProjectName, strings.Repeat("ü", 200), ""},
		{"project 201 runes", ProjectForm, FieldProjectName, strings.Repeat("ü", 201), "Project name must not be longer than 200 characters"},
		{"project padded 200", ProjectForm, FieldProjectName, "  " + strings.Repeat("a", 200) + "  ", ""},
		{"snippet 200 runes", SnippetForm, FieldSnippetName, strings.Repeat("音", 200), ""},
		{"snippet 201 runes", SnippetForm, FieldSnippetName, strings.Repeat("音", 201), "Snippet title must not be longer than 200 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateAll(tt.variant, Values{tt.field: tt.value}, Discriminants{})
			if got := errs.Message(tt.field); got != tt.want {
				t.Fatalf("message = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSecretRedaction(t *testing.T) {
	secret := NewSecret("Password123!")
	for _, out := range []string{fmt.Sprint(secret), fmt.Sprintf("%#v", secret)} {
		if strings.Contains(out, "Password123!") {
			t.Fatalf("secret leaked through formatting: %q", out)
		}
	}
	data, err := json.Marshal(map[string]any{"password": secret})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"password":"[redacted]"}` {
		t.Fatalf("secret leaked through json: %s", data)
	}
	if secret.Reveal() != "Password123!" {
		t.Fatal("reveal must return the wrapped value")
	}
}
