package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Its-donkey/algorave-share/internal/forms"
)

func TestRecorderCountsSubmissions(t *testing.T) {
	rec := New()
	rec.Submission(forms.ProjectForm, OutcomeInvalid)
	rec.Submission(forms.ProjectForm, OutcomeAccepted)
	rec.Submission(forms.ProjectForm, OutcomeAccepted)
	rec.FieldErrors(forms.ProjectForm, forms.FieldErrors{
		forms.FieldProjectName:   {Kind: forms.KindRequired, Message: "A project name is required"},
		forms.FieldSingleProject: {Kind: forms.KindRequired, Message: "Don't forget to add your code!"},
	})
	rec.ObserveSink(forms.ProjectForm, 20*time.Millisecond)

	if got := testutil.ToFloat64(rec.submissions.WithLabelValues("project", OutcomeAccepted)); got != 2 {
		t.Fatalf("expected 2 accepted submissions, got %v", got)
	}
	if got := testutil.ToFloat64(rec.fieldErrors.WithLabelValues("project", "projectName")); got != 1 {
		t.Fatalf("expected 1 projectName error, got %v", got)
	}
	count, err := testutil.GatherAndCount(rec.Registry(), "algorave_form_sink_duration_seconds")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one sink latency series, got %d", count)
	}
}

func TestRecorderHandlerExposesMetrics(t *testing.T) {
	rec := New()
	rec.Submission(forms.SnippetForm, OutcomeFailed)

	srv := httptest.NewServer(rec.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `algorave_form_submissions_total{form="snippet",outcome="failed"} 1`) {
		t.Fatalf("submission counter missing from exposition:\n%s", body)
	}
}

func TestNilRecorderIsNoop(t *testing.T) {
	var rec *Recorder
	rec.Submission(forms.RegistrationForm, OutcomeAccepted)
	rec.FieldErrors(forms.RegistrationForm, forms.FieldErrors{forms.FieldEmail: {}})
	rec.ObserveSink(forms.RegistrationForm, time.Second)
}
