package pipeline

import (
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
)

// Mode selects how the industry list is built.
type Mode string

const (
	ModeManual Mode = "manual"
	ModeAuto   Mode = "auto"
	ModeHybrid Mode = "hybrid"
)

// DefaultIndustries is the industry set searched in auto mode.
var DefaultIndustries = []string{"dentists", "plumbers", "HVAC", "lawyers", "landscaping"}

// HybridIndustries are appended to custom industries in hybrid mode.
var HybridIndustries = []string{"dentists", "plumbers", "HVAC"}

// ParseMode validates a mode string. Empty means manual.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeManual, nil
	case ModeManual, ModeAuto, ModeHybrid:
		return m, nil
	default:
		return "", eris.Errorf("pipeline: unknown industry mode %q", s)
	}
}

// ResolveIndustries builds the industry list for mode from a comma-separated
// custom list.
func ResolveIndustries(mode Mode, list string) ([]string, error) {
	switch mode {
	case ModeAuto:
		return append([]string(nil), DefaultIndustries...), nil
	case ModeManual:
		industries := SplitIndustries(list)
		if len(industries) == 0 {
			return nil, eris.New("pipeline: no industries given")
		}
		return industries, nil
	case ModeHybrid:
		return dedupe(append(SplitIndustries(list), HybridIndustries...)), nil
	default:
		return nil, eris.Errorf("pipeline: unknown industry mode %q", mode)
	}
}

// SplitIndustries splits a comma-separated list, trimming entries and
// dropping empty ones.
func SplitIndustries(list string) []string {
	var out []string
	for _, s := range strings.Split(list, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// dedupe drops case-insensitive repeats, keeping the first spelling.
func dedupe(industries []string) []string {
	fold := cases.Fold()
	seen := make(map[string]struct{}, len(industries))
	out := make([]string, 0, len(industries))
	for _, s := range industries {
		key := fold.String(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
