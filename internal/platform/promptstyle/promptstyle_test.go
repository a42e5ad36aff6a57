package promptstyle

import (
	"strings"
	"testing"
)

func TestApplySystemIsIdempotent(t *testing.T) {
	once := ApplySystem("Design a roadmap.\nMore detail.", "json")
	if !strings.HasPrefix(once, marker) {
		t.Fatalf("missing marker: %q", once)
	}
	if !strings.Contains(once, "Task summary: Design a roadmap.") {
		t.Fatalf("missing summary: %q", once)
	}
	if twice := ApplySystem(once, "json"); twice != once {
		t.Fatalf("second application changed the prompt")
	}
	if ApplySystem("   ", "json") != "" {
		t.Fatalf("blank prompt should stay blank")
	}
}
