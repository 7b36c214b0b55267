package provider

import (
	"context"
	"errors"
	"testing"
)

// fakeProvider records calls and answers from a canned script.
type fakeProvider struct {
	name  string
	text  string
	err   error
	calls int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Generate(_ context.Context, _, _ string) (string, error) {
	f.calls++
	return f.text, f.err
}

func TestGenerateFirstSuccessWins(t *testing.T) {
	primary := &fakeProvider{name: "openai", text: "primary answer"}
	secondary := &fakeProvider{name: "anthropic", text: "secondary answer"}
	o := NewOrchestrator([]Provider{primary, secondary}, "error")

	text, err := o.Generate(context.Background(), "sys", "user", false)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "primary answer" {
		t.Errorf("text = %q", text)
	}
	if secondary.calls != 0 {
		t.Error("secondary called despite primary success")
	}
}

func TestGenerateFailsOverInOrder(t *testing.T) {
	primary := &fakeProvider{name: "openai", err: errors.New("rate limited")}
	secondary := &fakeProvider{name: "anthropic", text: "secondary answer"}
	o := NewOrchestrator([]Provider{primary, secondary}, "error")

	text, err := o.Generate(context.Background(), "sys", "user", false)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "secondary answer" {
		t.Errorf("text = %q", text)
	}
	if primary.calls != 1 || secondary.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", primary.calls, secondary.calls)
	}
}

func TestGenerateAllFail(t *testing.T) {
	provErr := errors.New("boom")
	o := NewOrchestrator([]Provider{
		&fakeProvider{name: "openai", err: errors.New("timeout")},
		&fakeProvider{name: "anthropic", err: provErr},
	}, "error")

	_, err := o.Generate(context.Background(), "sys", "user", false)
	if !errors.Is(err, ErrAllProvidersUnavailable) {
		t.Fatalf("err = %v, want ErrAllProvidersUnavailable", err)
	}
	if !errors.Is(err, provErr) {
		t.Errorf("last provider error not joined: %v", err)
	}
}

func TestGenerateNoProviders(t *testing.T) {
	o := NewOrchestrator(nil, "error")
	_, err := o.Generate(context.Background(), "sys", "user", false)
	if !errors.Is(err, ErrAllProvidersUnavailable) {
		t.Errorf("err = %v, want ErrAllProvidersUnavailable", err)
	}
}

func TestGenerateForceFallbackSkipsPrimary(t *testing.T) {
	primary := &fakeProvider{name: "openai", text: "primary answer"}
	secondary := &fakeProvider{name: "anthropic", text: "secondary answer"}
	o := NewOrchestrator([]Provider{primary, secondary}, "error")

	text, err := o.Generate(context.Background(), "sys", "user", true)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "secondary answer" {
		t.Errorf("text = %q", text)
	}
	if primary.calls != 0 {
		t.Error("primary called despite forced fallback")
	}
}

func TestGenerateForceFallbackSingleProvider(t *testing.T) {
	only := &fakeProvider{name: "openai", text: "answer"}
	o := NewOrchestrator([]Provider{only}, "error")

	_, err := o.Generate(context.Background(), "sys", "user", true)
	if !errors.Is(err, ErrAllProvidersUnavailable) {
		t.Errorf("err = %v, want ErrAllProvidersUnavailable", err)
	}
	if only.calls != 0 {
		t.Error("sole provider called despite forced fallback")
	}
}

func TestProvidersNames(t *testing.T) {
	o := NewOrchestrator([]Provider{
		&fakeProvider{name: "openai"},
		&fakeProvider{name: "gemini"},
	}, "error")
	names := o.Providers()
	if len(names) != 2 || names[0] != "openai" || names[1] != "gemini" {
		t.Errorf("names = %v", names)
	}
}

func TestCheckAvailability(t *testing.T) {
	o := NewOrchestrator([]Provider{
		&fakeProvider{name: "openai", err: errors.New("down")},
		&fakeProvider{name: "anthropic", text: "ok"},
	}, "error")

	avail := o.CheckAvailability(context.Background())
	if !avail.Available {
		t.Error("expected overall availability with one provider up")
	}
	if avail.Providers["openai"] || !avail.Providers["anthropic"] {
		t.Errorf("per-provider map = %v", avail.Providers)
	}
}

func TestCheckAvailabilityAllDown(t *testing.T) {
	o := NewOrchestrator([]Provider{
		&fakeProvider{name: "openai", err: errors.New("down")},
	}, "error")
	if avail := o.CheckAvailability(context.Background()); avail.Available {
		t.Error("expected unavailable")
	}
}
