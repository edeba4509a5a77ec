package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/cardimposer/pkg/cache"
	errs "github.com/matzehuels/cardimposer/pkg/errors"
	"github.com/matzehuels/cardimposer/pkg/expand"
	"github.com/matzehuels/cardimposer/pkg/layout"
	"github.com/matzehuels/cardimposer/pkg/settings"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"pdf", false},
		{"png", false},
		{"json", false},
		{"svg", true},
		{"PDF", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"pdf", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"pdf", "svg"}); err == nil {
		t.Error("Invalid format should fail")
	}
	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

// testSettings lays out 2x4 business cards on A4 at a low resolution.
func testSettings() settings.PrintSettings {
	s := settings.Default()
	s.Margin = 5
	s.RotateAllowed = false
	s.DPI = 72
	return s
}

func onePNG(t *testing.T, dir, name string, c color.NRGBA) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 45, 25))
	for y := 0; y < 25; y++ {
		for x := 0; x < 45; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func testParty(t *testing.T, n int) expand.Party {
	t.Helper()
	dir := t.TempDir()
	p := expand.Party{Name: "test", Quantity: 1}
	for i := 0; i < n; i++ {
		p.Fronts = append(p.Fronts, onePNG(t, dir, "front"+string(rune('a'+i))+".png", color.NRGBA{R: 200, A: 255}))
		p.Backs = append(p.Backs, onePNG(t, dir, "back"+string(rune('a'+i))+".png", color.NRGBA{B: 200, A: 255}))
	}
	return p
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	opts := Options{Settings: testSettings(), Parties: []expand.Party{{Fronts: []string{"a.png"}, Quantity: 1}}}

	require.NoError(t, opts.ValidateAndSetDefaults())
	assert.Equal(t, []string{FormatPDF}, opts.Formats)
	assert.NotEmpty(t, opts.JobID)
	assert.Equal(t, DefaultConcurrency, opts.Concurrency)
	assert.Equal(t, DefaultPreviewScale, opts.PreviewScale)
	assert.NotNil(t, opts.Logger)

	id := opts.JobID
	require.NoError(t, opts.ValidateAndSetDefaults())
	assert.Equal(t, id, opts.JobID, "second call must not change the job ID")
}

func TestOptionsValidateErrors(t *testing.T) {
	parties := []expand.Party{{Fronts: []string{"a.png"}, Quantity: 1}}
	degenerate := testSettings()
	degenerate.Sheet = settings.Dimensions{Width: 5, Height: 5}

	tests := []struct {
		name string
		opts Options
		code errs.Code
	}{
		{"no parties", Options{Settings: testSettings()}, errs.ErrCodeEmptyBatch},
		{"degenerate settings", Options{Settings: degenerate, Parties: parties}, errs.ErrCodeDegenerateSettings},
		{"unknown format", Options{Settings: testSettings(), Parties: parties, Formats: []string{"svg"}}, errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			require.Error(t, err)
			assert.True(t, errs.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestExecute(t *testing.T) {
	party := testParty(t, 3)
	party.Quantity = 2

	var events []Event
	runner := NewRunner(nil, nil, nil)
	res, err := runner.Execute(context.Background(), Options{
		Name:     "open day",
		Settings: testSettings(),
		Parties:  []expand.Party{party},
		Formats:  []string{FormatPDF, FormatPNG, FormatJSON},
		Progress: func(e Event) { events = append(events, e) },
	})
	require.NoError(t, err)

	assert.Equal(t, 6, res.Sequence.Len())
	assert.Equal(t, 8, res.Layout.CardsPerSheet)
	assert.Equal(t, 2, res.Stats.TotalSheets)
	assert.Equal(t, 1, res.Stats.FrontSheets)
	assert.Equal(t, 1, res.Stats.BackSheets)
	assert.Zero(t, res.Stats.UnresolvedImages)
	assert.Equal(t, res.JobID, res.Document.JobID)

	require.Equal(t, 2, res.PDF.Pages)
	assert.InDelta(t, 210, res.PDF.Sizes[0].Width, 0.1)
	assert.InDelta(t, 297, res.PDF.Sizes[0].Height, 0.1)
	assert.NotEmpty(t, res.Artifacts[FormatPNG])

	var report Report
	require.NoError(t, json.Unmarshal(res.Artifacts[FormatJSON], &report))
	assert.Equal(t, res.JobID, report.JobID)
	assert.Equal(t, 6, report.Stats.TotalCards)
	assert.Equal(t, 2, report.Layout.Columns)

	require.NotEmpty(t, events)
	assert.Equal(t, StageInitializing, events[0].Stage)
	assert.Equal(t, StageComplete, events[len(events)-1].Stage)
	assert.Equal(t, 100.0, events[len(events)-1].Percent)
	for i, e := range events {
		assert.Equal(t, res.JobID, e.JobID)
		if i > 0 {
			assert.GreaterOrEqual(t, e.Percent, events[i-1].Percent, "event %d went backwards", i)
		}
	}
}

func TestExecuteUnresolvedImage(t *testing.T) {
	party := testParty(t, 2)
	party.Fronts[1] = filepath.Join(t.TempDir(), "gone.png")

	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{
		Settings: testSettings(),
		Parties:  []expand.Party{party},
	})
	require.NoError(t, err, "a missing image must not abort the run")
	require.Len(t, res.Stats.Unresolved, 1)
	assert.Equal(t, party.Fronts[1], res.Stats.Unresolved[0].Ref)
	assert.Equal(t, 2, res.PDF.Pages)
}

func TestExecuteSchemeMismatch(t *testing.T) {
	party := testParty(t, 2)
	party.Backs = party.Backs[:1]

	strict := testSettings()
	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{Settings: strict, Parties: []expand.Party{party}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, expand.ErrSchemeMismatch))

	lenient := testSettings()
	lenient.Lenient = true
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{Settings: lenient, Parties: []expand.Party{party}})
	require.NoError(t, err)
	assert.Len(t, res.Warnings, 1)
	assert.Equal(t, 1, res.Sequence.Len(), "1:1 truncates to the shorter list")
}

func TestExecuteNoFeasibleLayout(t *testing.T) {
	s := testSettings()
	s.Card = settings.Dimensions{Width: 400, Height: 400}

	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{Settings: s, Parties: []expand.Party{testParty(t, 1)}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, layout.ErrNoFeasibleLayout))
	assert.True(t, errs.Is(err, errs.ErrCodeNoFeasibleLayout))
}

func TestRunnerPreviewCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	runner := NewRunner(fc, nil, nil)
	ctx := context.Background()

	first, hit, err := runner.Preview(ctx, testSettings(), PreviewOptions{Scale: 1})
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := runner.Preview(ctx, testSettings(), PreviewOptions{Scale: 1})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)

	_, hit, err = runner.Preview(ctx, testSettings(), PreviewOptions{Scale: 1, Mirror: true})
	require.NoError(t, err)
	assert.False(t, hit, "mirrored proof must not reuse the front proof")
}

func TestReporterIsMonotonic(t *testing.T) {
	var got []float64
	r := &reporter{jobID: "j", fn: func(e Event) { got = append(got, e.Percent) }}

	r.emit(StageLayout, 20, "")
	r.emit(StageRendering, 10, "")
	r.sheets(1, 2)
	r.sheets(2, 2)
	r.emit(StageComplete, 150, "")

	assert.Equal(t, []float64{20, 20, 55, 85, 100}, got)
}
