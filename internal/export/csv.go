// Package export reads and writes lead records as CSV.
package export

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadcrm/internal/model"
)

// WriteCSV writes a header row and one line per record. Zero records write
// nothing.
func WriteCSV(w io.Writer, recs []model.LeadRecord) error {
	if len(recs) == 0 {
		return nil
	}

	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	for i := range recs {
		if err := enc.Encode(recs[i]); err != nil {
			return eris.Wrapf(err, "export: encode record %d", i)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

// ReadCSV parses the output of WriteCSV. Empty input yields no records;
// unparseable numbers become 0.
func ReadCSV(r io.Reader) ([]model.LeadRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	dec, err := csvutil.NewDecoder(cr)
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "export: read csv header")
	}
	dec.WithUnmarshalers(csvutil.UnmarshalFunc(lenientFloat))

	var out []model.LeadRecord
	for {
		var rec model.LeadRecord
		if err := dec.Decode(&rec); errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, eris.Wrapf(err, "export: decode line %d", len(out)+2)
		}
		out = append(out, rec)
	}
	return out, nil
}

func lenientFloat(data []byte, f *float64) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		*f = 0
		return nil
	}
	*f = v
	return nil
}
