package forms

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type recordingSink struct {
	calls []Submission
}

func (s *recordingSink) Accept(_ context.Context, sub Submission) (Receipt, error) {
	s.calls = append(s.calls, sub)
	return Receipt{ID: "rec-1", Message: "stored"}, nil
}

func fill(t *testing.T, e *Engine, values map[Field]any) {
	t.Helper()
	for field, value := range values {
		if err := e.SetValue(field, value); err != nil {
			t.Fatalf("set %s: %v", field, err)
		}
	}
}

func tidalFinished() map[Field]any {
	return map[Field]any{
		FieldProjectSoftware: "Tidal Cycles",
		FieldProjectType:     "Finished Project",
		FieldProjectName:     "My Tidal Project",
		FieldDescription:     "Test Project Description Text",
		FieldSingleProject:   `d1 $ sound "bd sd"`,
	}
}

func TestSubmitTidalFinishedReachesSinkUnchanged(t *testing.T) {
	sink := &recordingSink{}
	engine := NewEngine(ProjectForm, sink)
	fill(t, engine, tidalFinished())

	receipt, err := engine.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if receipt.ID != "rec-1" {
		t.Fatalf("expected receipt from sink, got %+v", receipt)
	}
	if len(sink.calls) != 1 {
		t.Fatalf("expected exactly one sink call, got %d", len(sink.calls))
	}
	want := Values{}
	for k, v := range tidalFinished() {
		want[k] = v
	}
	if diff := cmp.Diff(want, sink.calls[0].Values); diff != "" {
		t.Fatalf("submitted values mismatch (-want +got):\n%s", diff)
	}
	if got := sink.calls[0].Discriminants; got.Software != SoftwareTidalCycles || got.Type != ProjectTypeFinished {
		t.Fatalf("unexpected discriminants %+v", got)
	}
}

func TestSubmitEmptyFormBlocksSink(t *testing.T) {
	sink := &recordingSink{}
	engine := NewEngine(ProjectForm, sink)

	_, err := engine.Submit(context.Background())
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(sink.calls) != 0 {
		t.Fatalf("sink must not be called, got %d calls", len(sink.calls))
	}
	want := map[string]string{
		"projectSoftware": "Please select the project software",
		"projectType":     "Please select a project type",
		"projectName":     "A project name is required",
	}
	if diff := cmp.Diff(want, engine.Errors().Messages()); diff != "" {
		t.Fatalf("error map mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitEmptyRegistrationFlagsEveryRequiredField(t *testing.T) {
	sink := &recordingSink{}
	engine := NewEngine(RegistrationForm, sink)
	if _, err := engine.Submit(context.Background()); err == nil {
		t.Fatal("expected validation failure")
	}
	for _, field := range RegistrationForm.Fields() {
		if !IsRequired(RegistrationForm, field, Discriminants{}) {
			continue
		}
		if engine.Errors().Message(field) == "" {
			t.Fatalf("expected error on required field %s", field)
		}
	}
	if len(sink.calls) != 0 {
		t.Fatal("sink must not be called")
	}
}

func TestSubmitNameTooLong(t *testing.T) {
	sink := &recordingSink{}
	engine := NewEngine(ProjectForm, sink)
	values := tidalFinished()
	values[FieldProjectName] = strings.Repeat("a", 201)
	fill(t, engine, values)

	if _, err := engine.Submit(context.Background()); err == nil {
		t.Fatal("expected submit to fail")
	}
	got := engine.Errors()[FieldProjectName]
	if got.Kind != KindLength || !strings.Contains(got.Message, "must not be longer than 200 characters") {
		t.Fatalf("unexpected name error %+v", got)
	}
	if len(engine.Errors().Fields()) != 1 {
		t.Fatalf("expected only the name to fail, got %v", engine.Errors().Fields())
	}
	if len(sink.calls) != 0 {
		t.Fatal("sink must not be called")
	}
}

func TestSubmitInvalidYouTubeLinkThenCorrected(t *testing.T) {
	sink := &recordingSink{}
	engine := NewEngine(ProjectForm, sink)
	fill(t, engine, tidalFinished())
	fill(t, engine, map[Field]any{FieldYouTubeLink: "not-a-valid-url"})

	if _, err := engine.Submit(context.Background()); err == nil {
		t.Fatal("expected invalid url to block submit")
	}
	if got := engine.Errors().Message(FieldYouTubeLink); got != "Are you sure that URL is correct?" {
		t.Fatalf("unexpected youtube error %q", got)
	}

	fill(t, engine, map[Field]any{FieldYouTubeLink: "https://www.youtube.com/watch?v=abc123"})
	if _, err := engine.Submit(context.Background()); err != nil {
		t.Fatalf("expected corrected url to submit: %v", err)
	}
	if engine.Errors().HasError() {
		t.Fatalf("expected errors cleared, got %v", engine.Errors().Messages())
	}
	if len(sink.calls) != 1 {
		t.Fatalf("expected one sink call, got %d", len(sink.calls))
	}
}

func TestSubmitKeepsUntrimmedValues(t *testing.T) {
	sink := &recordingSink{}
	engine := NewEngine(ProjectForm, sink)
	values := tidalFinished()
	values[FieldProjectName] = "  Padded  "
	fill(t, engine, values)

	if _, err := engine.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := sink.calls[0].Values.Text(FieldProjectName); got != "  Padded  " {
		t.Fatalf("expected untrimmed name, got %q", got)
	}
}

func TestAudioUploadValidatesOnSelection(t *testing.T) {
	engine := NewEngine(ProjectForm, nil)
	if err := engine.SetValue(FieldAudioUpload, File{Name: "clip.mp4"}); err != nil {
		t.Fatalf("set file: %v", err)
	}
	if engine.Errors().Message(FieldAudioUpload) == "" {
		t.Fatal("expected immediate file type error")
	}
	if err := engine.SetValue(FieldAudioUpload, File{Name: "clip.ogg"}); err != nil {
		t.Fatalf("set file: %v", err)
	}
	if msg := engine.Errors().Message(FieldAudioUpload); msg != "" {
		t.Fatalf("expected error cleared, got %q", msg)
	}

	if err := engine.SetValue(FieldProjectName, ""); err != nil {
		t.Fatalf("set name: %v", err)
	}
	if engine.Errors().Message(FieldProjectName) != "" {
		t.Fatal("text fields must not validate before submit")
	}
}

func TestSetDiscriminantClearsErrorsOfHiddenFields(t *testing.T) {
	engine := NewEngine(ProjectForm, &recordingSink{})
	fill(t, engine, map[Field]any{
		FieldProjectSoftware: "Strudel",
		FieldProjectType:     "Before and After Live Coding Project",
	})
	if _, err := engine.Submit(context.Background()); err == nil {
		t.Fatal("expected failure")
	}
	for _, f := range []Field{FieldDescription, FieldCodeBlockOne, FieldCodeBlockTwo} {
		if engine.Errors().Message(f) == "" {
			t.Fatalf("expected error on %s", f)
		}
	}

	if err := engine.SetDiscriminant(FieldProjectSoftware, SoftwareSentinel); err != nil {
		t.Fatalf("set software: %v", err)
	}
	if err := engine.SetDiscriminant(FieldProjectType, "Finished Project"); err != nil {
		t.Fatalf("set type: %v", err)
	}
	errs := engine.Errors()
	for _, f := range []Field{FieldDescription, FieldCodeBlockOne, FieldCodeBlockTwo} {
		if errs.Message(f) != "" {
			t.Fatalf("expected hidden field %s to lose its error", f)
		}
	}
	if errs.Message(FieldProjectName) == "" {
		t.Fatal("visible field errors persist until the next submit")
	}
	if errs.Message(FieldSingleProject) != "" {
		t.Fatal("newly required field is not flagged before submit")
	}
}

func TestSetValueRejectsForeignFieldsAndTypes(t *testing.T) {
	engine := NewEngine(SnippetForm, nil)
	if err := engine.SetValue(FieldProjectType, "Finished Project"); err == nil {
		t.Fatal("snippet form has no project type")
	}
	if err := engine.SetValue(FieldSnippetName, 42); err == nil {
		t.Fatal("expected unsupported type error")
	}
}

func TestSubmitWithoutSink(t *testing.T) {
	engine := NewEngine(ProjectForm, nil)
	fill(t, engine, tidalFinished())
	if _, err := engine.Submit(context.Background()); !errors.Is(err, ErrNoSink) {
		t.Fatalf("expected ErrNoSink, got %v", err)
	}
}

func TestSubmitWrapsSinkFailure(t *testing.T) {
	boom := errors.New("db down")
	engine := NewEngine(ProjectForm, SinkFunc(func(context.Context, Submission) (Receipt, error) {
		return Receipt{}, boom
	}))
	fill(t, engine, tidalFinished())
	if _, err := engine.Submit(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped sink error, got %v", err)
	}
}

func TestPasswordsAreWrapped(t *testing.T) {
	engine := NewEngine(RegistrationForm, nil)
	fill(t, engine, map[Field]any{FieldPasswordOne: "Password123!"})
	if _, ok := engine.Values()[FieldPasswordOne].(Secret); !ok {
		t.Fatalf("expected password stored as Secret, got %T", engine.Values()[FieldPasswordOne])
	}
}

func TestResetRemountsEmptyForm(t *testing.T) {
	sink := &recordingSink{}
	engine := NewEngine(ProjectForm, sink)
	fill(t, engine, map[Field]any{
		FieldProjectSoftware: "Strudel",
		FieldProjectType:     "Finished Project",
		FieldProjectName:     "Half done",
	})
	if _, err := engine.Submit(context.Background()); err == nil {
		t.Fatal("expected validation errors before reset")
	}

	engine.Reset()
	if len(engine.Values()) != 0 || len(engine.Errors()) != 0 {
		t.Fatalf("expected empty state, got values=%v errors=%v", engine.Values(), engine.Errors())
	}
	if engine.Discriminants() != (Discriminants{}) || len(engine.VisibleSections().List()) != 0 {
		t.Fatalf("expected unset dropdowns and no sections, got %+v", engine.Discriminants())
	}

	fill(t, engine, tidalFinished())
	if _, err := engine.Submit(context.Background()); err != nil {
		t.Fatalf("submit after reset: %v", err)
	}
	if len(sink.calls) != 1 {
		t.Fatalf("expected one sink call, got %d", len(sink.calls))
	}
}
