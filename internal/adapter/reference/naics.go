package reference

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/tri-dashboard/internal/domain"
)

// ReadNAICS reads NAICS code titles from the first sheet of an xlsx
// workbook. The header row must contain "Code" and "Title" columns; any
// further columns (such as "Description") are ignored. Trilateral title
// markers are removed.
func ReadNAICS(r io.Reader) ([]domain.IndustryCode, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open naics workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("naics workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read naics sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, errors.New("naics sheet is empty")
	}

	cols := headerIndex(rows[0])
	codeCol, ok := cols["code"]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrMissingColumn, "Code")
	}
	titleCol, ok := cols["title"]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrMissingColumn, "Title")
	}

	codes := make([]domain.IndustryCode, 0, len(rows)-1)
	for _, row := range rows[1:] {
		code := cell(row, codeCol)
		if code == "" {
			continue
		}
		codes = append(codes, domain.IndustryCode{
			Code:  code,
			Title: trimTrilateralMarker(cell(row, titleCol)),
		})
	}
	return codes, nil
}

// trimTrilateralMarker drops the trailing "T" the Census Bureau appends to
// titles shared by the US, Canadian and Mexican NAICS ("Soybean FarmingT").
func trimTrilateralMarker(title string) string {
	n := len(title)
	if n < 2 || title[n-1] != 'T' {
		return title
	}
	prev := title[n-2]
	if (prev >= 'a' && prev <= 'z') || prev == ')' {
		return title[:n-1]
	}
	return title
}

// headerIndex maps lower-cased, trimmed header names to their column index.
// The first occurrence of a name wins.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(domain.NormalizeHeader(h))
		if _, ok := idx[key]; !ok {
			idx[key] = i
		}
	}
	return idx
}

// lookup returns the index of the first header matching one of names.
func lookup(idx map[string]int, names ...string) (int, bool) {
	for _, n := range names {
		if i, ok := idx[strings.ToLower(n)]; ok {
			return i, true
		}
	}
	return 0, false
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
