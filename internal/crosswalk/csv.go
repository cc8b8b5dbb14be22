package crosswalk

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// readColumns streams a CSV file and returns the requested columns for
// every usable row, plus a count of rows skipped for missing or empty
// values. Bad rows are a data-quality signal, not a fatal condition.
func readColumns(path string, cols []string) ([][]string, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, 0, errors.New("csv has no header row")
	}
	// Handle BOM on first header cell
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	col := map[string]int{}
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	idx := make([]int, len(cols))
	for i, name := range cols {
		j, ok := col[name]
		if !ok {
			return nil, 0, fmt.Errorf("missing required column: %s", name)
		}
		idx[i] = j
	}

	var rows [][]string
	skipped := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}

		out := make([]string, len(idx))
		ok := true
		for i, j := range idx {
			if j >= len(rec) {
				ok = false
				break
			}
			v := strings.TrimSpace(rec[j])
			if v == "" {
				ok = false
				break
			}
			out[i] = v
		}
		if !ok {
			skipped++
			continue
		}
		rows = append(rows, out)
	}

	return rows, skipped, nil
}
