package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/JorgeNachtigall/pandas2redshift/dataset"
)

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999",
	time.RFC3339,
}

const dateLayout = "2006-01-02"

// readDataset reads a delimited file with a header line and builds a typed
// dataset, inferring each column's semantic type from its values.
func readDataset(path string, delim rune) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("reading input file: %w", err)
	}
	bar := progressbar.DefaultBytes(info.Size(), "reading "+info.Name())
	defer bar.Finish()

	r := csv.NewReader(io.TeeReader(f, bar))
	r.Comma = delim

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("input file %s is empty", path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	raw := make([][]string, len(header))
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading input file: %w", err)
		}
		for i := range header {
			raw[i] = append(raw[i], record[i])
		}
	}

	cols := make([]dataset.Column, len(header))
	for i, name := range header {
		typ := inferType(raw[i])
		values := make([]any, len(raw[i]))
		for j, s := range raw[i] {
			v, err := parseValue(typ, s)
			if err != nil {
				return nil, fmt.Errorf("column %q row %d: %w", name, j+1, err)
			}
			values[j] = v
		}
		cols[i] = dataset.Column{Name: name, Type: typ, Values: values}
	}
	return dataset.New(cols...)
}

// inferType picks the narrowest semantic type every non-empty value in the
// column satisfies. Empty strings count as nulls and constrain nothing; an
// all-empty column falls back to text.
func inferType(values []string) dataset.Type {
	candidates := []struct {
		typ dataset.Type
		ok  func(string) bool
	}{
		{dataset.Integer, isInteger},
		{dataset.Float, isFloat},
		{dataset.Bool, isBool},
		{dataset.Timestamp, isTimestamp},
		{dataset.Date, isDate},
	}

next:
	for _, cand := range candidates {
		sawValue := false
		for _, s := range values {
			if s == "" {
				continue
			}
			sawValue = true
			if !cand.ok(s) {
				continue next
			}
		}
		if sawValue {
			return cand.typ
		}
		break
	}
	return dataset.Text
}

// parseValue converts one raw field to the Go representation of the semantic
// type. Empty strings become nil.
func parseValue(t dataset.Type, s string) (any, error) {
	if s == "" {
		return nil, nil
	}
	switch t {
	case dataset.Integer:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing %q as integer: %w", s, err)
		}
		return n, nil
	case dataset.Float:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing %q as float: %w", s, err)
		}
		return f, nil
	case dataset.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("parsing %q as bool: %w", s, err)
		}
		return b, nil
	case dataset.Timestamp:
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, nil
			}
		}
		return nil, fmt.Errorf("parsing %q as timestamp", s)
	case dataset.Date:
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, fmt.Errorf("parsing %q as date: %w", s, err)
		}
		return d, nil
	}
	return s, nil
}

func isInteger(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func isFloat(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func isBool(s string) bool {
	return s == "true" || s == "false" || s == "True" || s == "False"
}

func isTimestamp(s string) bool {
	for _, layout := range timestampLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func isDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}
