package report

import (
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/lelandsequel/CL-SEO-AUTO/internal/model"
)

// XLSXSheet is the sheet name written by SaveXLSX.
const XLSXSheet = "Leads"

// SaveCSV writes leads to path as CSV, regardless of the display format.
func SaveCSV(path string, leads []model.Lead) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "report: create csv file")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = eris.Wrap(cerr, "report: close csv file")
		}
	}()

	return CSV{}.Render(f, leads)
}

// SaveXLSX writes leads to a single-sheet workbook with the CSV columns.
func SaveXLSX(path string, leads []model.Lead) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(XLSXSheet)
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range model.LeadColumns {
		header.AddCell().SetString(col)
	}

	for _, l := range leads {
		row := sheet.AddRow()
		row.AddCell().SetString(l.Business)
		row.AddCell().SetString(l.Industry)
		row.AddCell().SetString(l.Location)
		row.AddCell().SetString(l.Website)
		row.AddCell().SetString(l.Phone)
		row.AddCell().SetInt(l.SEOScore)
		row.AddCell().SetString(string(l.Category))
		row.AddCell().SetString(l.Issues)
		row.AddCell().SetString(strconv.FormatFloat(l.Rating, 'f', -1, 64))
		row.AddCell().SetInt(l.Reviews)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "xlsx: save file")
	}
	return nil
}
