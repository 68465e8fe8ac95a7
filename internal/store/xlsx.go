package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leadcrm/internal/model"
)

// XLSXSheet is the worksheet holding lead rows.
const XLSXSheet = "leads"

// XLSXStore keeps records in a spreadsheet workbook. The file is read once on
// open and rewritten after every change.
type XLSXStore struct {
	mu      sync.RWMutex
	path    string
	records []model.LeadRecord
}

// OpenXLSX loads the workbook at path. A missing file starts empty.
func OpenXLSX(path string) (*XLSXStore, error) {
	s := &XLSXStore{path: path}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}

	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsx: open %s", path)
	}
	sheet, ok := f.Sheet[XLSXSheet]
	if !ok {
		return s, nil
	}

	var header map[string]int
	for i, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, c := range row.Cells {
			cells[j] = strings.TrimSpace(c.String())
		}
		if i == 0 {
			header = headerIndex(cells)
			continue
		}
		if allBlank(cells) {
			continue
		}
		s.records = append(s.records, rowToLead(cells, header))
	}
	return s, nil
}

func (s *XLSXStore) Upsert(_ context.Context, rec model.LeadRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := upsertSlice(append([]model.LeadRecord(nil), s.records...), rec)
	if err := s.save(next); err != nil {
		return err
	}
	s.records = next
	return nil
}

func (s *XLSXStore) All(_ context.Context) ([]model.LeadRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.LeadRecord(nil), s.records...), nil
}

func (s *XLSXStore) Aggregate(_ context.Context) (model.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.Summarize(s.records), nil
}

func (s *XLSXStore) ReplaceAll(_ context.Context, recs []model.LeadRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := append([]model.LeadRecord(nil), recs...)
	if err := s.save(next); err != nil {
		return err
	}
	s.records = next
	return nil
}

// Migrate writes an empty workbook with the header row if none exists.
func (s *XLSXStore) Migrate(_ context.Context) error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(s.records)
}

func (s *XLSXStore) Close() error { return nil }

// save writes recs to a temp file and renames it over the workbook.
func (s *XLSXStore) save(recs []model.LeadRecord) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(XLSXSheet)
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range model.LeadColumns {
		header.AddCell().SetString(col)
	}
	for _, rec := range recs {
		row := sheet.AddRow()
		row.AddCell().SetString(rec.ID)
		row.AddCell().SetString(rec.Name)
		row.AddCell().SetString(rec.Company)
		row.AddCell().SetString(string(rec.Status))
		row.AddCell().SetString(rec.Summary)
		row.AddCell().SetFloat(rec.Score)
		row.AddCell().SetFloat(rec.Value)
	}

	tmp := s.path + ".tmp"
	if err := f.Save(tmp); err != nil {
		return eris.Wrapf(err, "xlsx: save %s", tmp)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return eris.Wrapf(err, "xlsx: rename to %s", s.path)
	}
	return nil
}

func headerIndex(cells []string) map[string]int {
	idx := make(map[string]int, len(cells))
	for i, c := range cells {
		idx[strings.ToLower(c)] = i
	}
	return idx
}

func rowToLead(cells []string, header map[string]int) model.LeadRecord {
	get := func(col string) string {
		i, ok := header[col]
		if !ok || i >= len(cells) {
			return ""
		}
		return cells[i]
	}
	return model.LeadRecord{
		ID:      get("id"),
		Name:    get("name"),
		Company: get("company"),
		Status:  model.NormalizeStatus(get("status")),
		Summary: get("summary"),
		Score:   parseNumber(get("score")),
		Value:   parseNumber(get("value")),
	}
}

func parseNumber(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

func allBlank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
