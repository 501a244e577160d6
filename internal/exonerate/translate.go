package exonerate

import "strings"

// Standard genetic code: DNA codon to amino acid (single letter).
var codonTable = map[string]byte{
	"TTT": 'F', "TTC": 'F', "TTA": 'L', "TTG": 'L',
	"TCT": 'S', "TCC": 'S', "TCA": 'S', "TCG": 'S',
	"TAT": 'Y', "TAC": 'Y', "TAA": '*', "TAG": '*',
	"TGT": 'C', "TGC": 'C', "TGA": '*', "TGG": 'W',

	"CTT": 'L', "CTC": 'L', "CTA": 'L', "CTG": 'L',
	"CCT": 'P', "CCC": 'P', "CCA": 'P', "CCG": 'P',
	"CAT": 'H', "CAC": 'H', "CAA": 'Q', "CAG": 'Q',
	"CGT": 'R', "CGC": 'R', "CGA": 'R', "CGG": 'R',

	"ATT": 'I', "ATC": 'I', "ATA": 'I', "ATG": 'M',
	"ACT": 'T', "ACC": 'T', "ACA": 'T', "ACG": 'T',
	"AAT": 'N', "AAC": 'N', "AAA": 'K', "AAG": 'K',
	"AGT": 'S', "AGC": 'S', "AGA": 'R', "AGG": 'R',

	"GTT": 'V', "GTC": 'V', "GTA": 'V', "GTG": 'V',
	"GCT": 'A', "GCC": 'A', "GCA": 'A', "GCG": 'A',
	"GAT": 'D', "GAC": 'D', "GAA": 'E', "GAG": 'E',
	"GGT": 'G', "GGC": 'G', "GGA": 'G', "GGG": 'G',
}

// translateCodon translates an uppercase DNA codon to its amino acid.
// Returns 'X' for unknown codons and '*' for stop codons.
func translateCodon(codon string) byte {
	if aa, ok := codonTable[codon]; ok {
		return aa
	}
	return 'X'
}

// Translate translates a coding sequence to amino acids. Trailing
// bases that do not complete a codon are ignored.
func Translate(cds string) string {
	cds = strings.ToUpper(cds)
	n := (len(cds) / 3) * 3

	var result strings.Builder
	result.Grow(n / 3)
	for i := 0; i < n; i += 3 {
		result.WriteByte(translateCodon(cds[i : i+3]))
	}
	return result.String()
}

// hasInternalStop reports whether a translation contains a stop before
// its final residue.
func hasInternalStop(protein string) bool {
	return strings.Contains(strings.TrimSuffix(protein, "*"), "*")
}
