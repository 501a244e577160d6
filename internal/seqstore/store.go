// Package seqstore provides identifier-indexed access to the sequences
// of a FASTA file.
package seqstore

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// ErrNotFound is returned by Get for an unknown identifier.
var ErrNotFound = errors.New("sequence not found")

// Store maps sequence ids, the first word of each FASTA header, to
// sequences. It is read-only once loaded.
type Store struct {
	seqs map[string]*linear.Seq
}

// Load reads every sequence of the FASTA file at path. Files ending in
// .gz are decompressed.
func Load(path string, alpha alphabet.Alphabet) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FASTA file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f

	// Handle gzipped files
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	s, err := Read(reader, alpha)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Read builds a store from FASTA content. A repeated id keeps the
// first sequence.
func Read(r io.Reader, alpha alphabet.Alphabet) (*Store, error) {
	s := &Store{seqs: make(map[string]*linear.Seq)}

	sc := seqio.NewScanner(fasta.NewReader(r, linear.NewSeq("", nil, alpha)))
	for sc.Next() {
		seq := sc.Seq().(*linear.Seq)
		id := seq.Name()
		if _, dup := s.seqs[id]; dup {
			continue
		}
		s.seqs[id] = seq
	}
	if err := sc.Error(); err != nil {
		return nil, fmt.Errorf("read FASTA: %w", err)
	}
	return s, nil
}

// Get returns the sequence stored under id. The returned sequence is
// shared; callers must Clone it before changing it.
func (s *Store) Get(id string) (*linear.Seq, error) {
	if s != nil {
		if seq, ok := s.seqs[id]; ok {
			return seq, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Len returns the number of stored sequences.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.seqs)
}
