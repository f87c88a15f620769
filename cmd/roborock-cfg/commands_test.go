package main

import (
	"testing"

	"github.com/skovtroldenhugo/roborock/internal/flow"
	"github.com/skovtroldenhugo/roborock/internal/urls"
)

func TestStepHelpURL(t *testing.T) {
	if got := stepHelpURL(flow.StepCamera); got != urls.CameraOptions {
		t.Errorf("stepHelpURL(%q) = %q, want %q", flow.StepCamera, got, urls.CameraOptions)
	}
	for _, stepID := range []string{flow.StepUser, flow.StepCode, flow.StepVacuum} {
		if got := stepHelpURL(stepID); got != "" {
			t.Errorf("stepHelpURL(%q) = %q, want empty", stepID, got)
		}
	}
}

func TestPromptLabelFallsBackToKey(t *testing.T) {
	if got := promptLabel(flow.KeyMapScale); got != "Map scale" {
		t.Errorf("promptLabel(%q) = %q, want %q", flow.KeyMapScale, got, "Map scale")
	}
	if got := promptLabel("unknown_key"); got != "unknown_key" {
		t.Errorf("promptLabel(unknown_key) = %q, want the key itself", got)
	}
}
