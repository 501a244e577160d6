// Package exonerate runs protein-to-genome alignments with Exonerate and
// turns each best hit into a gene model.
package exonerate

// Gene is a gene model called from one Exonerate alignment.
type Gene struct {
	ID           string // Query protein id
	Ref          string // Matched reference protein id
	ContigID     string // Target sequence the hit lies on
	Start        int64  // 1-based, inclusive
	End          int64  // 1-based, inclusive
	Called       string // Translation of Nucleotide, stops included
	Protein      string // Called without its terminal stop
	Nucleotide   string // Target coding sequence
	InternalStop bool
	Introns      int
}
