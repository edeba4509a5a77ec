// Package job reads batch definitions: the print settings and the parties
// of one imposition run.
//
// A job file is TOML. Settings use the form keys of [settings.FromForm];
// image paths are relative to the job file unless absolute:
//
//	name = "Spring open day"
//	output = "spring.pdf"
//
//	[settings]
//	sheet_size = "A4"
//	card_size = "standard"
//	matching_scheme = "1:1"
//	bleed = 3
//
//	[[party]]
//	name = "Alice"
//	fronts = ["alice/front.png"]
//	backs = ["alice/back.png"]
//	quantity = 2
//
// Instead of listing parties, a job may point at image directories:
//
//	[scan]
//	fronts = "fronts"
//	backs = "backs"
package job

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/cardimposer/pkg/errors"
	"github.com/matzehuels/cardimposer/pkg/expand"
	"github.com/matzehuels/cardimposer/pkg/imagefit"
	"github.com/matzehuels/cardimposer/pkg/settings"
)

// Job is a loaded batch definition with absolute or job-relative image
// paths resolved against Dir.
type Job struct {
	Name     string                 `json:"name"`
	Output   string                 `json:"output,omitempty"`
	Dir      string                 `json:"dir"`
	Settings settings.PrintSettings `json:"settings"`
	Parties  []expand.Party         `json:"parties"`
	// Warnings collects non-fatal findings such as unmatched backs.
	Warnings []string `json:"warnings,omitempty"`
}

type file struct {
	Name     string         `toml:"name"`
	Output   string         `toml:"output"`
	Settings map[string]any `toml:"settings"`
	Parties  []partyFile    `toml:"party"`
	Scan     *scanFile      `toml:"scan"`
}

type partyFile struct {
	Name     string   `toml:"name"`
	Fronts   []string `toml:"fronts"`
	Backs    []string `toml:"backs"`
	Quantity *int     `toml:"quantity"`
}

type scanFile struct {
	Fronts string `toml:"fronts"`
	Backs  string `toml:"backs"`
}

// Load reads the job file at path.
func Load(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "job file %s", path)
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read job file %s", path)
	}
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "resolve %s", path)
	}
	j, err := Parse(data, dir)
	if err != nil {
		return nil, err
	}
	if j.Name == "" {
		j.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return j, nil
}

// Parse decodes a job definition. Relative image paths are joined to dir.
func Parse(data []byte, dir string) (*Job, error) {
	var f file
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "parse job")
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "unknown job key %q", keys[0].String())
	}

	form, err := settings.FormFromValues(f.Settings)
	if err != nil {
		return nil, err
	}
	s, err := settings.FromForm(form)
	if err != nil {
		return nil, err
	}

	j := &Job{Name: f.Name, Output: f.Output, Dir: dir, Settings: s}
	if err := errs.ValidatePartyName(j.Name); err != nil {
		return nil, err
	}

	switch {
	case f.Scan != nil && len(f.Parties) > 0:
		return nil, errs.New(errs.ErrCodeInvalidInput, "job lists parties and a scan section; use one")
	case f.Scan != nil:
		fronts, err := resolve(dir, f.Scan.Fronts)
		if err != nil {
			return nil, err
		}
		backs := ""
		if f.Scan.Backs != "" {
			if backs, err = resolve(dir, f.Scan.Backs); err != nil {
				return nil, err
			}
		}
		parties, warnings, err := Scan(fronts, backs, s)
		if err != nil {
			return nil, err
		}
		j.Parties, j.Warnings = parties, warnings
	default:
		for i, pf := range f.Parties {
			p, err := pf.party(dir)
			if err != nil {
				return nil, fmt.Errorf("party #%d: %w", i+1, err)
			}
			j.Parties = append(j.Parties, p)
		}
	}
	if len(j.Parties) == 0 {
		return nil, errs.Wrap(errs.ErrCodeEmptyBatch, expand.ErrEmptyBatch, "job defines no parties")
	}
	return j, nil
}

// Sequence expands the job's parties under its matching scheme.
func (j *Job) Sequence() (expand.Sequence, error) {
	return expand.Expand(j.Parties, j.Settings.Scheme, expand.WithLenient(j.Settings.Lenient))
}

func (pf partyFile) party(dir string) (expand.Party, error) {
	p := expand.Party{Name: pf.Name, Quantity: 1}
	if pf.Quantity != nil {
		p.Quantity = *pf.Quantity
	}
	var err error
	if p.Fronts, err = resolveAll(dir, pf.Fronts); err != nil {
		return p, err
	}
	if p.Backs, err = resolveAll(dir, pf.Backs); err != nil {
		return p, err
	}
	return p, nil
}

func resolveAll(dir string, refs []string) ([]string, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		p, err := resolve(dir, ref)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func resolve(dir, ref string) (string, error) {
	if err := errs.ValidateImageRef(ref); err != nil {
		return "", err
	}
	if filepath.IsAbs(ref) {
		return filepath.Clean(ref), nil
	}
	if err := errs.ValidateRelativePath(ref); err != nil {
		return "", err
	}
	return filepath.Join(dir, ref), nil
}

// Scan builds parties from image directories. Files are taken in name
// order; unsupported files are skipped. backDir may be empty.
//
// A 1:N job with a single back gives every front that back. Otherwise,
// with s.MatchByName each front becomes its own party paired with a back
// by [expand.Match], and without it all fronts and backs form one party
// whose pairing the matching scheme decides.
func Scan(frontDir, backDir string, s settings.PrintSettings) ([]expand.Party, []string, error) {
	fronts, err := listImages(frontDir)
	if err != nil {
		return nil, nil, err
	}
	if len(fronts) == 0 {
		return nil, nil, errs.Wrap(errs.ErrCodeEmptyBatch, expand.ErrEmptyBatch, "no images in %s", frontDir)
	}
	var backs []string
	if backDir != "" {
		if backs, err = listImages(backDir); err != nil {
			return nil, nil, err
		}
	}

	if s.Scheme == settings.OneToMany && len(backs) == 1 {
		return []expand.Party{{Name: filepath.Base(frontDir), Fronts: fronts, Backs: backs, Quantity: 1}}, nil, nil
	}
	if !s.MatchByName {
		return []expand.Party{{Name: filepath.Base(frontDir), Fronts: fronts, Backs: backs, Quantity: 1}}, nil, nil
	}

	m := expand.Match(fronts, backs, s.Lenient)
	parties := make([]expand.Party, 0, len(m.Pairs))
	for _, pair := range m.Pairs {
		p := expand.Party{
			Name:     strings.TrimSuffix(filepath.Base(pair.Front), filepath.Ext(pair.Front)),
			Fronts:   []string{pair.Front},
			Quantity: 1,
		}
		if pair.Back != expand.NoBack {
			p.Backs = []string{pair.Back}
		}
		parties = append(parties, p)
	}
	return parties, m.Warnings, nil
}

func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "image directory %s", dir)
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "read %s", dir)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if path := filepath.Join(dir, e.Name()); imagefit.Supported(path) {
			out = append(out, path)
		}
	}
	slices.Sort(out)
	return out, nil
}
