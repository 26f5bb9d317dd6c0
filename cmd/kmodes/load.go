package main

import (
	"encoding/csv"
	"io"

	"github.com/pkg/errors"
)

// dataset is a categorical CSV file split into attribute records and, when
// a label column was named, the known class of each record.
type dataset struct {
	records [][]string
	classes []string
}

func loadCSV(r io.Reader, header bool, labelColumn int) (*dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "read csv")
	}
	if header && len(rows) > 0 {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return nil, errors.New("csv holds no records")
	}

	ds := &dataset{records: make([][]string, 0, len(rows))}
	for i, row := range rows {
		if labelColumn < 0 {
			ds.records = append(ds.records, row)
			continue
		}
		if labelColumn >= len(row) {
			return nil, errors.Errorf("row %d has %d columns, label column is %d", i, len(row), labelColumn)
		}
		rec := make([]string, 0, len(row)-1)
		rec = append(rec, row[:labelColumn]...)
		rec = append(rec, row[labelColumn+1:]...)
		ds.records = append(ds.records, rec)
		ds.classes = append(ds.classes, row[labelColumn])
	}
	return ds, nil
}

// dropConstantColumns removes attributes that hold the same value in every
// record and returns their original indices.
func (ds *dataset) dropConstantColumns() []int {
	if len(ds.records) == 0 {
		return nil
	}
	width := len(ds.records[0])
	var keep, dropped []int
	for a := 0; a < width; a++ {
		constant := true
		for _, rec := range ds.records[1:] {
			if rec[a] != ds.records[0][a] {
				constant = false
				break
			}
		}
		if constant {
			dropped = append(dropped, a)
		} else {
			keep = append(keep, a)
		}
	}
	if len(dropped) == 0 {
		return nil
	}

	for i, rec := range ds.records {
		out := make([]string, len(keep))
		for j, a := range keep {
			out[j] = rec[a]
		}
		ds.records[i] = out
	}
	return dropped
}
