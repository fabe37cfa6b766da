package report

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/rotisserie/eris"

	"github.com/lelandsequel/CL-SEO-AUTO/internal/model"
)

// Column widths for the table view.
const (
	businessWidth = 29
	industryWidth = 14
	websiteWidth  = 24
)

// NoLeadsMessage is printed instead of a table for an empty lead list.
const NoLeadsMessage = "No leads found."

// Table renders leads sorted by ascending SEO score, followed by a total and
// per-category tallies.
type Table struct{}

func (Table) Render(w io.Writer, leads []model.Lead) error {
	var b strings.Builder
	if len(leads) == 0 {
		b.WriteString("\n" + NoLeadsMessage + "\n")
	} else {
		b.WriteString("\n")
		b.WriteString(buildTable(SortByScore(leads)).Render())
		b.WriteString("\n")

		hot, warm, cold := Tally(leads)
		fmt.Fprintf(&b, "\nTotal leads found: %d\n", len(leads))
		fmt.Fprintf(&b, "  🔥 HOT (Poor SEO): %d\n", hot)
		fmt.Fprintf(&b, "  🟡 WARM: %d\n", warm)
		fmt.Fprintf(&b, "  ❄️  COLD (Good SEO): %d\n", cold)
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return eris.Wrap(err, "report: write table")
	}
	return nil
}

func buildTable(leads []model.Lead) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	t.AppendHeader(table.Row{"Business", "Industry", "SEO Score", "Category", "Website"})
	for _, l := range leads {
		t.AppendRow(table.Row{
			cell(l.Business, businessWidth),
			cell(l.Industry, industryWidth),
			l.SEOScore,
			lineBreaks.Replace(string(l.Category)),
			cell(l.Website, websiteWidth),
		})
	}
	return t
}

// SortByScore returns a copy of leads stably sorted by ascending SEO score.
func SortByScore(leads []model.Lead) []model.Lead {
	sorted := slices.Clone(leads)
	slices.SortStableFunc(sorted, func(a, b model.Lead) int {
		return a.SEOScore - b.SEOScore
	})
	return sorted
}

// Tally counts leads whose category mentions HOT, WARM, and COLD.
func Tally(leads []model.Lead) (hot, warm, cold int) {
	for _, l := range leads {
		if l.Category.Is("HOT") {
			hot++
		}
		if l.Category.Is("WARM") {
			warm++
		}
		if l.Category.Is("COLD") {
			cold++
		}
	}
	return hot, warm, cold
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")

// cell flattens s onto one line and cuts it to n runes so each lead stays
// on a single table row.
func cell(s string, n int) string {
	return truncate(lineBreaks.Replace(s), n)
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
