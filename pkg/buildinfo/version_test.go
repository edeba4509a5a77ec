package buildinfo

import (
	"strings"
	"testing"
)

func TestProducer(t *testing.T) {
	old := Version
	defer func() { Version = old }()

	Version = "v1.2.3"
	if got := Producer(); got != "cardimposer v1.2.3" {
		t.Errorf("Producer() = %q, want %q", got, "cardimposer v1.2.3")
	}
}

func TestTemplate(t *testing.T) {
	if !strings.Contains(Template(), "{{.Name}} version "+Version) {
		t.Errorf("Template() = %q, missing name placeholder", Template())
	}
	if !strings.Contains(String(), "commit: "+Commit) {
		t.Errorf("String() = %q, missing commit", String())
	}
}
