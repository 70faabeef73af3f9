package web

import (
	"strings"

	"github.com/Its-donkey/algorave-share/internal/forms"
)

type option struct {
	Value    string
	Label    string
	Selected bool
}

type profileField struct {
	Name  string
	Label string
	Value string
}

// pageData is the view model shared by every form template.
type pageData struct {
	Title            string
	Action           string
	Values           map[string]string
	Errors           map[string]string
	SoftwareSentinel string
	TypeSentinel     string
	SoftwareOptions  []option
	TypeOptions      []option
	ShowDescription  bool
	ShowSingleCode   bool
	ShowBeforeAfter  bool
	HelperText       string
	AudioAccept      string
	ProfileFields    []profileField
	ResultState      string
	ResultMessage    string
}

type page struct {
	name   string
	title  string
	action string
}

var pagesByVariant = map[forms.Variant]page{
	forms.ProjectForm:      {name: "project", title: "Share a project", action: "/submit/project"},
	forms.SnippetForm:      {name: "snippet", title: "Share a snippet", action: "/submit/snippet"},
	forms.RegistrationForm: {name: "register", title: "Create an account", action: "/register"},
}

func buildPageData(engine *forms.Engine) pageData {
	p := pagesByVariant[engine.Variant()]
	values := engine.Values()
	d := engine.Discriminants()
	sections := engine.VisibleSections()

	text := make(map[string]string, len(values))
	for _, field := range engine.Variant().Fields() {
		if v := values.Text(field); v != "" {
			text[string(field)] = v
		}
	}

	data := pageData{
		Title:            p.title,
		Action:           p.action,
		Values:           text,
		Errors:           engine.Errors().Messages(),
		SoftwareSentinel: forms.SoftwareSentinel,
		TypeSentinel:     forms.ProjectTypeSentinel,
		ShowDescription:  sections.Has(forms.SectionDescription),
		ShowSingleCode:   sections.Has(forms.SectionSingleCode),
		ShowBeforeAfter:  sections.Has(forms.SectionBeforeAfterCode),
		HelperText:       engine.HelperText(),
		AudioAccept:      audioAccept(),
	}
	for _, s := range forms.Softwares {
		data.SoftwareOptions = append(data.SoftwareOptions, option{Value: s.String(), Label: s.String(), Selected: s == d.Software})
	}
	for _, t := range forms.ProjectTypes {
		data.TypeOptions = append(data.TypeOptions, option{Value: t.String(), Label: t.String(), Selected: t == d.Type})
	}
	if engine.Variant() == forms.RegistrationForm {
		data.ProfileFields = []profileField{
			{Name: string(forms.FieldPortfolioURL), Label: "Portfolio", Value: text[string(forms.FieldPortfolioURL)]},
			{Name: string(forms.FieldMastodonURL), Label: "Mastodon", Value: text[string(forms.FieldMastodonURL)]},
			{Name: string(forms.FieldBlueskyURL), Label: "Bluesky", Value: text[string(forms.FieldBlueskyURL)]},
			{Name: string(forms.FieldLinkedinURL), Label: "LinkedIn", Value: text[string(forms.FieldLinkedinURL)]},
		}
	}
	return data
}

func audioAccept() string {
	exts := make([]string, len(forms.AllowedAudioExtensions))
	for i, ext := range forms.AllowedAudioExtensions {
		exts[i] = "." + ext
	}
	return strings.Join(exts, ",")
}
