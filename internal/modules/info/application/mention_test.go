package application

import (
	"testing"
)

func TestMentionInteractor_Execute_ShouldRespond(t *testing.T) {
	interactor := NewMentionInteractor("42")

	result := interactor.Execute("<@42>")

	if !result.ShouldRespond {
		t.Error("expected ShouldRespond to be true")
	}
	if result.Response == "" {
		t.Error("expected a response")
	}
}

func TestMentionInteractor_Execute_ShouldNotRespond(t *testing.T) {
	interactor := NewMentionInteractor("42")

	result := interactor.Execute("Hello world")

	if result.ShouldRespond {
		t.Error("expected ShouldRespond to be false")
	}
	if result.Response != "" {
		t.Errorf("expected empty response, got %q", result.Response)
	}
}
