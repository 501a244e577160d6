package exonerate

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/panguess/internal/attr"
)

const (
	gffStart  = "# --- START OF GFF DUMP ---"
	gffEnd    = "# --- END OF GFF DUMP ---"
	ryoPrefix = "RYO\t"
)

// Parse reads the output of a search built by New and returns the gene
// called from its best hit. It returns nil with no error when the
// search reported no hit. Only the first hit is used when several are
// reported.
func Parse(r io.Reader) (*Gene, error) {
	scanner := bufio.NewScanner(r)
	// Target coding sequences are written on one line.
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 64*1024*1024)

	var (
		gene   *Gene
		exons  int
		blocks int
		inGFF  bool
	)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		switch {
		case line == gffStart:
			inGFF = true
			blocks++
		case line == gffEnd:
			inGFF = false
		case inGFF:
			if blocks == 1 && isExonRow(line) {
				exons++
			}
		case strings.HasPrefix(line, ryoPrefix) && gene == nil:
			g, err := parseRYO(line)
			if err != nil {
				return nil, err
			}
			gene = g
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan exonerate output: %w", err)
	}
	if gene == nil {
		return nil, nil
	}
	gene.Introns = attr.IntronCount(exons)
	return gene, nil
}

func isExonRow(line string) bool {
	if strings.HasPrefix(line, "#") {
		return false
	}
	fields := strings.Split(line, "\t")
	return len(fields) >= 3 && fields[2] == "exon"
}

// parseRYO parses a line of the form
// RYO <query id> <target id> <target begin> <target end> <target cds>
// where begin and end are 0-based positions between bases, reversed for
// hits on the minus strand.
func parseRYO(line string) (*Gene, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 6 {
		return nil, fmt.Errorf("malformed exonerate result line: expected 6 fields, got %d", len(fields))
	}
	begin, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse target begin: %w", err)
	}
	end, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse target end: %w", err)
	}
	if begin > end {
		begin, end = end, begin
	}

	nucl := strings.ToUpper(fields[5])
	called := Translate(nucl)
	return &Gene{
		ID:           fields[1],
		Ref:          fields[1],
		ContigID:     fields[2],
		Start:        begin + 1,
		End:          end,
		Called:       called,
		Protein:      strings.TrimSuffix(called, "*"),
		Nucleotide:   nucl,
		InternalStop: hasInternalStop(called),
	}, nil
}
