// Package staging turns a dataset into the transient object the warehouse
// bulk-loads from: a deterministic CSV rendering, a collision-resistant
// object key, and the S3 adapter that holds the artifact for the duration of
// one load.
package staging

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/JorgeNachtigall/pandas2redshift/dataset"
)

// Timestamp and date renderings accepted by the warehouse's 'auto' formats.
const (
	timestampLayout = "2006-01-02 15:04:05.999999"
	dateLayout      = "2006-01-02"
)

// Serialize renders the dataset as CSV: a header line of column names, then
// one record per row with fields in dataset column order. NULLs become empty
// fields; the COPY options declare EMPTYASNULL, which makes the empty field
// the documented missing-value token. Output is byte-identical for identical
// input.
//
// Note the contract's one lossy corner: an empty text value and a NULL both
// encode as an empty field, and EMPTYASNULL loads both as NULL.
func Serialize(ds *dataset.Dataset) ([]byte, error) {
	var buf bytes.Buffer
	if err := SerializeTo(&buf, ds); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SerializeTo is the streaming form of Serialize: rows are encoded and
// flushed one at a time, so peak memory is bounded by a single row.
func SerializeTo(w io.Writer, ds *dataset.Dataset) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(ds.ColumnNames()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	rows := ds.NumRows()
	record := make([]string, ds.NumCols())
	for i := 0; i < rows; i++ {
		for j, col := range ds.Columns {
			field, err := renderValue(col.Type, col.Values[i])
			if err != nil {
				return fmt.Errorf("column %q row %d: %w", col.Name, i, err)
			}
			record[j] = field
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func renderValue(t dataset.Type, v any) (string, error) {
	if v == nil {
		return "", nil
	}
	switch t {
	case dataset.Integer:
		switch n := v.(type) {
		case int:
			return strconv.Itoa(n), nil
		case int32:
			return strconv.FormatInt(int64(n), 10), nil
		case int64:
			return strconv.FormatInt(n, 10), nil
		}
	case dataset.Float:
		switch f := v.(type) {
		case float32:
			return strconv.FormatFloat(float64(f), 'g', -1, 32), nil
		case float64:
			return strconv.FormatFloat(f, 'g', -1, 64), nil
		}
	case dataset.Bool:
		if b, ok := v.(bool); ok {
			return strconv.FormatBool(b), nil
		}
	case dataset.Text:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case dataset.Timestamp:
		if tm, ok := v.(time.Time); ok {
			return tm.Format(timestampLayout), nil
		}
	case dataset.Date:
		if tm, ok := v.(time.Time); ok {
			return tm.Format(dateLayout), nil
		}
	}
	return "", fmt.Errorf("cannot encode %T as %s", v, t)
}
