package negotiation

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ashureev/offertalk/internal/completion"
	"github.com/ashureev/offertalk/internal/domain"
)

func TestExtractSplitsNonEmptyLines(t *testing.T) {
	completer := &fakeCompleter{fn: func(_ completion.Request) (string, error) {
		return "The candidate has 5 years of experience.\n\n  \nThe candidate works on backend systems.\n", nil
	}}
	extractor := NewFactExtractor(completer, nil)

	facts := extractor.Extract(context.Background(), "I have 5 years of experience in backend systems.", domain.RoleJobSeeker)

	want := []string{
		"The candidate has 5 years of experience.",
		"The candidate works on backend systems.",
	}
	if !reflect.DeepEqual(facts, want) {
		t.Errorf("Expected %v, got %v", want, facts)
	}
}

func TestExtractUsesRoleScopedPrompt(t *testing.T) {
	completer := &fakeCompleter{fn: func(_ completion.Request) (string, error) {
		return "", nil
	}}
	extractor := NewFactExtractor(completer, nil)

	extractor.Extract(context.Background(), "we offer equity", domain.RoleRecruiter)

	if len(completer.calls) != 1 {
		t.Fatalf("Expected 1 completion call, got %d", len(completer.calls))
	}
	call := completer.calls[0]
	if !strings.Contains(call.System, "recruiter's message") {
		t.Errorf("Expected role-scoped instruction, got:\n%s", call.System)
	}
	if !strings.Contains(call.System, "explicitly mentioned") {
		t.Errorf("Expected explicit-information restriction, got:\n%s", call.System)
	}
	if !strings.Contains(call.User, "we offer equity") {
		t.Errorf("Expected message in user content, got:\n%s", call.User)
	}
	if call.Temperature != extractionTemperature {
		t.Errorf("Expected extraction temperature %v, got %v", extractionTemperature, call.Temperature)
	}
}

func TestExtractFailureReturnsNoFacts(t *testing.T) {
	completer := &fakeCompleter{fn: func(_ completion.Request) (string, error) {
		return "", errors.New("service down")
	}}
	extractor := NewFactExtractor(completer, nil)

	if facts := extractor.Extract(context.Background(), "hello", domain.RoleJobSeeker); facts != nil {
		t.Errorf("Expected nil facts on failure, got %v", facts)
	}
}

func TestFormatUSD(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{80000, "80,000"},
		{210000, "210,000"},
		{1500000, "1,500,000"},
		{950, "950"},
		{130500, "130,500"},
		{81000.5, "81,000.5"},
	}
	for _, tc := range cases {
		if got := formatUSD(tc.in); got != tc.want {
			t.Errorf("formatUSD(%v): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}
