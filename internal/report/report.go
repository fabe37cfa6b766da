// Package report renders lead lists for display and export.
package report

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/lelandsequel/CL-SEO-AUTO/internal/model"
)

// Format names an output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatYAML  Format = "yaml"
)

// Formats lists every supported display format.
var Formats = []Format{FormatTable, FormatJSON, FormatCSV, FormatYAML}

// Renderer writes a lead list in one format.
type Renderer interface {
	Render(w io.Writer, leads []model.Lead) error
}

// New returns the renderer for format.
func New(format Format) (Renderer, error) {
	switch Format(strings.ToLower(string(format))) {
	case FormatTable:
		return Table{}, nil
	case FormatJSON:
		return JSON{}, nil
	case FormatCSV:
		return CSV{}, nil
	case FormatYAML:
		return YAML{}, nil
	default:
		return nil, eris.Errorf("report: unknown format %q", format)
	}
}

// JSON renders leads as a pretty-printed array.
type JSON struct{}

func (JSON) Render(w io.Writer, leads []model.Lead) error {
	if leads == nil {
		leads = []model.Lead{}
	}
	b, err := json.MarshalIndent(leads, "", "  ")
	if err != nil {
		return eris.Wrap(err, "report: marshal json")
	}
	b = append(b, '\n')
	if _, err := w.Write(b); err != nil {
		return eris.Wrap(err, "report: write json")
	}
	return nil
}

// CSV renders leads with a header row, in pipeline order.
type CSV struct{}

func (CSV) Render(w io.Writer, leads []model.Lead) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	var err error
	if len(leads) == 0 {
		err = enc.EncodeHeader(model.Lead{})
	} else {
		err = enc.Encode(leads)
	}
	if err != nil {
		return eris.Wrap(err, "report: encode csv")
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "report: flush csv")
	}
	return nil
}

// YAML renders leads as a YAML sequence.
type YAML struct{}

func (YAML) Render(w io.Writer, leads []model.Lead) error {
	if leads == nil {
		leads = []model.Lead{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(leads); err != nil {
		return eris.Wrap(err, "report: encode yaml")
	}
	if err := enc.Close(); err != nil {
		return eris.Wrap(err, "report: close yaml encoder")
	}
	return nil
}

// ParseCSV decodes CSV produced by the CSV renderer back into leads.
func ParseCSV(r io.Reader) ([]model.Lead, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		if eris.Is(err, io.EOF) {
			return []model.Lead{}, nil
		}
		return nil, eris.Wrap(err, "report: read csv header")
	}

	leads := []model.Lead{}
	for {
		var l model.Lead
		if err := dec.Decode(&l); err != nil {
			if eris.Is(err, io.EOF) {
				break
			}
			return nil, eris.Wrap(err, "report: decode csv row")
		}
		leads = append(leads, l)
	}
	return leads, nil
}
