package exonerate

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// Query is one reference protein written to its own FASTA file.
type Query struct {
	ID     string
	Path   string
	Length int
}

var fileSafe = strings.NewReplacer("/", "_", string(os.PathSeparator), "_")

// SplitReference writes each protein read from r to <dir>/<id>.faa and
// returns the queries in input order.
func SplitReference(r io.Reader, dir string) ([]Query, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create query directory: %w", err)
	}

	var queries []Query
	sc := seqio.NewScanner(fasta.NewReader(r, linear.NewSeq("", nil, alphabet.Protein)))
	for sc.Next() {
		s := sc.Seq().(*linear.Seq)
		q := Query{
			ID:     s.Name(),
			Path:   filepath.Join(dir, fileSafe.Replace(s.Name())+".faa"),
			Length: s.Len(),
		}
		if err := writeQuery(q.Path, s); err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}
	if err := sc.Error(); err != nil {
		return nil, fmt.Errorf("read reference proteins: %w", err)
	}
	return queries, nil
}

func writeQuery(path string, s *linear.Seq) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create query file: %w", err)
	}
	if _, err := fasta.NewWriter(f, 60).Write(s); err != nil {
		f.Close()
		return fmt.Errorf("write query %s: %w", s.Name(), err)
	}
	return f.Close()
}

// LengthFilter keeps genes whose called protein length is within ratio
// of the matched reference length, measured as the shorter over the
// longer. A ratio of zero or less keeps every gene. Genes whose
// reference length is unknown are dropped when filtering.
func LengthFilter(genes []*Gene, queries []Query, ratio float64) []*Gene {
	if ratio <= 0 {
		return genes
	}
	lengths := make(map[string]int, len(queries))
	for _, q := range queries {
		lengths[q.ID] = q.Length
	}

	kept := make([]*Gene, 0, len(genes))
	for _, g := range genes {
		ref, ok := lengths[g.Ref]
		called := len(g.Called)
		if !ok || ref == 0 || called == 0 {
			continue
		}
		if float64(min(ref, called))/float64(max(ref, called)) >= ratio {
			kept = append(kept, g)
		}
	}
	return kept
}
