// Package normalize converts the native output of each gene predictor
// into attribute records.
package normalize

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// gtfColumns is the column count of a GFF feature row.
const gtfColumns = 9

// row is one line of predictor output, kept with its line number for
// error reporting. Blank lines are kept as rows with no fields.
type row struct {
	line   int
	fields []string
}

func (r row) blank() bool {
	return len(r.fields) == 0
}

func (r row) feature() bool {
	return len(r.fields) == gtfColumns
}

func (r row) seqName() string  { return r.fields[0] }
func (r row) featType() string { return r.fields[2] }
func (r row) attrs() string    { return r.fields[8] }

// coords parses the start and end columns.
func (r row) coords() (start, end int64, err error) {
	start, err = strconv.ParseInt(r.fields[3], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("line %d: parse start: %w", r.line, err)
	}
	end, err = strconv.ParseInt(r.fields[4], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("line %d: parse end: %w", r.line, err)
	}
	return start, end, nil
}

// readRows splits tab-delimited predictor output into rows. Blank
// lines are kept since TransDecoder uses them to separate genes.
func readRows(reader io.Reader) ([]row, error) {
	scanner := bufio.NewScanner(reader)
	// Increase buffer size for long attribute columns
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	var rows []row
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		r := row{line: lineNum}
		if strings.TrimSpace(line) != "" {
			r.fields = strings.Split(line, "\t")
		}
		rows = append(rows, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan rows: %w", err)
	}
	return rows, nil
}

// gffAttribute returns the value for key in a GFF3 attribute column,
// e.g. `ID=cds.Gene.1;Parent=Gene.1` with key Parent -> Gene.1.
func gffAttribute(attrs, key string) (string, bool) {
	for _, part := range strings.Split(attrs, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if ok && k == key {
			return v, true
		}
	}
	return "", false
}

// span accumulates the coordinates and exon count of one gene.
type span struct {
	start, end int64
	exons      int
	seen       bool
}

func (s *span) add(start, end int64) {
	lo, hi := min(start, end), max(start, end)
	if !s.seen {
		s.start, s.end, s.seen = lo, hi, true
		return
	}
	s.start = min(s.start, lo)
	s.end = max(s.end, hi)
}
