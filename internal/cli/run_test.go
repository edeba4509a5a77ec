package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/cardimposer/pkg/pipeline"
	"github.com/matzehuels/cardimposer/pkg/settings"
)

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "jobs/party.toml", "jobs/party"},
		{"", "cards", "cards"},
		{"out/cards.pdf", "party.toml", "out/cards"},
		{"out/cards.PNG", "party.toml", "out/cards"},
		{"out/cards.v2", "party.toml", "out/cards.v2"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestEventLine(t *testing.T) {
	tests := []struct {
		event pipeline.Event
		want  string
	}{
		{pipeline.Event{Stage: pipeline.StageLayout, Percent: 20, Message: "computing layout"}, " 20% computing layout"},
		{pipeline.Event{Stage: pipeline.StageComplete, Percent: 100}, "100% complete"},
	}
	for _, tt := range tests {
		if got := eventLine(tt.event); got != tt.want {
			t.Errorf("eventLine(%+v) = %q, want %q", tt.event, got, tt.want)
		}
	}
}

func TestWriteArtifacts(t *testing.T) {
	base := filepath.Join(t.TempDir(), "out", "cards")
	result := &pipeline.Result{Artifacts: map[string][]byte{
		pipeline.FormatPDF:  []byte("%PDF"),
		pipeline.FormatJSON: []byte("{}"),
	}}

	paths, err := writeArtifacts(result, []string{pipeline.FormatJSON, pipeline.FormatPDF, pipeline.FormatPNG}, base)
	if err != nil {
		t.Fatalf("writeArtifacts() error: %v", err)
	}
	want := []string{base + ".json", base + ".pdf"}
	if len(paths) != len(want) || paths[0] != want[0] || paths[1] != want[1] {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	data, err := os.ReadFile(base + ".pdf")
	if err != nil || string(data) != "%PDF" {
		t.Errorf("pdf = %q, %v", data, err)
	}
}

func TestLoadBatchScan(t *testing.T) {
	dir := t.TempDir()
	fronts, backs := filepath.Join(dir, "fronts"), filepath.Join(dir, "backs")
	for _, d := range []string{fronts, backs} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
		for _, name := range []string{"alice.png", "bob.png"} {
			if err := os.WriteFile(filepath.Join(d, name), nil, 0o644); err != nil {
				t.Fatal(err)
			}
		}
	}

	c := New(io.Discard, LogInfo)
	cmd := c.runCommand()
	if err := cmd.ParseFlags([]string{"--fronts", fronts, "--backs", backs, "--bleed", "2", "-o", filepath.Join(dir, "print.pdf")}); err != nil {
		t.Fatal(err)
	}
	var opts runOpts
	opts.fronts, opts.backs, opts.output = fronts, backs, filepath.Join(dir, "print.pdf")
	opts.settings.bleed = 2

	b, err := c.loadBatch(cmd, "", &opts)
	if err != nil {
		t.Fatalf("loadBatch() error: %v", err)
	}
	if len(b.parties) != 2 {
		t.Errorf("parties = %d, want 2", len(b.parties))
	}
	if b.settings.Bleed != 2 || b.settings.Sheet != settings.SheetA4 {
		t.Errorf("settings = %+v", b.settings)
	}
	if want := filepath.Join(dir, "print"); b.base != want {
		t.Errorf("base = %q, want %q", b.base, want)
	}
	if b.name != "print" {
		t.Errorf("name = %q, want print", b.name)
	}
}

func TestLoadBatchJob(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "front.png"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	jobFile := filepath.Join(dir, "open-day.toml")
	content := `output = "print/open-day.pdf"

[settings]
sheet_size = "A3"

[[party]]
name = "Alice"
fronts = ["front.png"]
quantity = 3
`
	if err := os.WriteFile(jobFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(io.Discard, LogInfo)
	cmd := c.runCommand()
	if err := cmd.ParseFlags(nil); err != nil {
		t.Fatal(err)
	}
	b, err := c.loadBatch(cmd, jobFile, &runOpts{})
	if err != nil {
		t.Fatalf("loadBatch() error: %v", err)
	}
	if b.name != "open-day" || b.settings.Sheet != settings.SheetA3 {
		t.Errorf("batch = %+v", b)
	}
	if want := filepath.Join(dir, "print", "open-day"); b.base != want {
		t.Errorf("base = %q, want %q", b.base, want)
	}
}
