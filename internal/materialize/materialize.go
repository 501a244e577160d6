// Package materialize turns a merged call set into the final gene
// models: protein and nucleotide FASTA plus the attribute table, all
// keyed by canonical gene ids.
package materialize

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/featio/gff"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq"
	"github.com/biogo/biogo/seq/linear"

	"github.com/inodb/panguess/internal/attr"
	"github.com/inodb/panguess/internal/exonerate"
	"github.com/inodb/panguess/internal/seqstore"
)

// Sources holds the sequences each prediction method produced.
type Sources struct {
	GeneMarkProteins        *seqstore.Store
	GeneMarkNucleotides     *seqstore.Store
	TransDecoderProteins    *seqstore.Store
	TransDecoderNucleotides *seqstore.Store
	Exonerate               []*exonerate.Gene
}

// Set is a materialized gene model set. Records, Proteins and
// Nucleotides are parallel.
type Set struct {
	Tag         string
	Records     []attr.Record
	Proteins    []*linear.Seq
	Nucleotides []*linear.Seq
}

// CanonicalID returns the final id of a call: <tag>|<id> for alignment
// calls, <tag>|<contig>_<start>_<end> otherwise.
func CanonicalID(tag string, r attr.Record) string {
	if r.Origin.Method == attr.MethodExonerate {
		return tag + "|" + r.Origin.ID
	}
	return fmt.Sprintf("%s|%s_%d_%d", tag, r.ContigID, r.Start, r.End)
}

// Build resolves the sequences of every record. A record whose
// sequences cannot be found is an error.
func Build(records []attr.Record, src Sources, tag string) (*Set, error) {
	genes := make(map[string]*exonerate.Gene, len(src.Exonerate))
	for _, g := range src.Exonerate {
		if _, dup := genes[g.ID]; !dup {
			genes[g.ID] = g
		}
	}

	set := &Set{
		Tag:         tag,
		Records:     make([]attr.Record, 0, len(records)),
		Proteins:    make([]*linear.Seq, 0, len(records)),
		Nucleotides: make([]*linear.Seq, 0, len(records)),
	}
	for _, r := range records {
		id := CanonicalID(tag, r)

		var prot, nucl *linear.Seq
		switch r.Origin.Method {
		case attr.MethodGeneMark:
			p, n, err := lookup(src.GeneMarkProteins, src.GeneMarkNucleotides, r.Origin.ID)
			if err != nil {
				return nil, fmt.Errorf("lookup GeneMark call %s: %w", r.Origin.ID, err)
			}
			prot, nucl = rename(p, id), rename(n, id)
		case attr.MethodTransDecoder:
			p, n, err := lookup(src.TransDecoderProteins, src.TransDecoderNucleotides, r.Origin.ID)
			if err != nil {
				return nil, fmt.Errorf("lookup TransDecoder call %s: %w", r.Origin.ID, err)
			}
			prot, nucl = rename(p, id), rename(n, id)
		case attr.MethodExonerate:
			g, ok := genes[r.Origin.ID]
			if !ok {
				return nil, fmt.Errorf("lookup Exonerate call %s: %w", r.Origin.ID, seqstore.ErrNotFound)
			}
			prot = linear.NewSeq(id, alphabet.BytesToLetters([]byte(g.Protein)), alphabet.Protein)
			nucl = linear.NewSeq(id, alphabet.BytesToLetters([]byte(g.Nucleotide)), alphabet.DNA)
		default:
			return nil, fmt.Errorf("call %s: unknown method %v", r.GeneID, r.Origin.Method)
		}

		r.GeneID = id
		set.Records = append(set.Records, r)
		set.Proteins = append(set.Proteins, prot)
		set.Nucleotides = append(set.Nucleotides, nucl)
	}
	return set, nil
}

func lookup(prots, nucls *seqstore.Store, id string) (prot, nucl *linear.Seq, err error) {
	prot, err = prots.Get(id)
	if err != nil {
		return nil, nil, fmt.Errorf("protein: %w", err)
	}
	nucl, err = nucls.Get(id)
	if err != nil {
		return nil, nil, fmt.Errorf("nucleotide: %w", err)
	}
	return prot, nucl, nil
}

// rename copies s under a new id, dropping its description.
func rename(s *linear.Seq, id string) *linear.Seq {
	return linear.NewSeq(id, append(alphabet.Letters(nil), s.Seq...), s.Alpha)
}

// Paths returns the output files of tag in dir.
func Paths(dir, tag string) (faa, nucl, attributes string) {
	base := filepath.Join(dir, tag)
	return base + ".faa", base + ".nucl", base + ".attributes"
}

// Write writes <tag>.faa, <tag>.nucl and <tag>.attributes to dir,
// creating dir if needed.
func (s *Set) Write(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	faa, nucl, attributes := Paths(dir, s.Tag)
	if err := writeFASTA(faa, s.Proteins); err != nil {
		return err
	}
	if err := writeFASTA(nucl, s.Nucleotides); err != nil {
		return err
	}
	return attr.WriteTableFile(attributes, s.Records)
}

func writeFASTA(path string, seqs []*linear.Seq) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := fasta.NewWriter(f, 60)
	for _, s := range seqs {
		if _, err := w.Write(s); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", s.Name(), err)
		}
	}
	return f.Close()
}

// WriteGFF writes one gene feature per model.
func (s *Set) WriteGFF(w io.Writer) error {
	gw := gff.NewWriter(w, 60, true)
	for _, r := range s.Records {
		f := &gff.Feature{
			SeqName:    r.ContigID,
			Source:     "PanGuess",
			Feature:    "gene",
			FeatStart:  int(r.Start - 1),
			FeatEnd:    int(r.End),
			FeatStrand: seq.None,
			FeatFrame:  gff.NoFrame,
			FeatAttributes: gff.Attributes{
				{Tag: "ID", Value: r.GeneID},
				{Tag: "Method", Value: r.Origin.Method.String()},
				{Tag: "Source", Value: r.Origin.ID},
				{Tag: "InternalStop", Value: strconv.FormatBool(r.InternalStop)},
				{Tag: "Introns", Value: strconv.Itoa(r.Introns)},
			},
		}
		if _, err := gw.Write(f); err != nil {
			return fmt.Errorf("write feature %s: %w", r.GeneID, err)
		}
	}
	return nil
}

// WriteGFFFile writes the models to <dir>/<tag>.gff.
func (s *Set) WriteGFFFile(dir string) (string, error) {
	path := filepath.Join(dir, s.Tag+".gff")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if err := s.WriteGFF(f); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}
