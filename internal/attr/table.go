package attr

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Columns lists the attribute table columns in record field order.
var Columns = []string{
	"contig_id",
	"gene_id",
	"start",
	"end",
	"annotation",
	"source_tag",
}

// TableWriter writes records as a headerless tab-delimited table.
type TableWriter struct {
	w *bufio.Writer
}

// NewTableWriter creates a new attribute table writer.
func NewTableWriter(w io.Writer) *TableWriter {
	return &TableWriter{w: bufio.NewWriter(w)}
}

// Write writes a single record.
func (tw *TableWriter) Write(r Record) error {
	values := []string{
		r.ContigID,
		r.GeneID,
		strconv.FormatInt(r.Start, 10),
		strconv.FormatInt(r.End, 10),
		r.Annotation(),
		r.SourceTag,
	}
	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TableWriter) Flush() error {
	return tw.w.Flush()
}

// WriteTable writes all records to w.
func WriteTable(w io.Writer, records []Record) error {
	tw := NewTableWriter(w)
	for _, r := range records {
		if err := tw.Write(r); err != nil {
			return fmt.Errorf("write attribute row: %w", err)
		}
	}
	return tw.Flush()
}

// WriteTableFile writes all records to the file at path.
func WriteTableFile(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create attribute table: %w", err)
	}
	if err := WriteTable(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadTable parses an attribute table. Empty lines are skipped; any
// other malformed line is an error.
func ReadTable(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	var records []Record
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		rec, err := parseRow(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan attribute table: %w", err)
	}
	return records, nil
}

// ReadTableFile parses the attribute table at path.
func ReadTableFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open attribute table: %w", err)
	}
	defer f.Close()
	return ReadTable(f)
}

func parseRow(line string) (Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != len(Columns) {
		return Record{}, fmt.Errorf("expected %d fields, got %d", len(Columns), len(fields))
	}

	start, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("parse start: %w", err)
	}
	end, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("parse end: %w", err)
	}
	if start > end {
		return Record{}, fmt.Errorf("start %d after end %d", start, end)
	}

	origin, is, introns, err := ParseAnnotation(fields[4])
	if err != nil {
		return Record{}, err
	}

	return Record{
		ContigID:     fields[0],
		GeneID:       fields[1],
		Start:        start,
		End:          end,
		Origin:       origin,
		InternalStop: is,
		Introns:      introns,
		SourceTag:    fields[5],
	}, nil
}
