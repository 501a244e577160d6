package exonerate

import (
	"errors"
	"os/exec"

	"github.com/biogo/external"
)

var ErrMissingRequired = errors.New("exonerate: missing required argument")

// ryoFormat is the roll-your-own output line parsed by Parse: query id,
// target id, target alignment begin and end, target coding sequence.
const ryoFormat = `RYO\t%qi\t%ti\t%tab\t%tae\t%tcs\n`

// Exonerate defines parameters for a single exonerate search.
type Exonerate struct {
	// Usage: exonerate [options] <query path> <target path>
	//
	Cmd string `buildarg:"{{if .}}{{.}}{{else}}exonerate{{end}}"` // exonerate

	Model  string `buildarg:"{{if .}}--model{{split}}{{.}}{{end}}"` // --model: alignment model
	Target string `buildarg:"{{if .}}-t{{split}}{{.}}{{end}}"`      // -t: target sequence (genome)
	Query  string `buildarg:"{{if .}}-q{{split}}{{.}}{{end}}"`      // -q: query sequence (protein)

	Percent int `buildarg:"{{if .}}--percent{{split}}{{.}}{{end}}"` // --percent: score threshold as percentage of maximal
	BestN   int `buildarg:"{{if .}}--bestn{{split}}{{.}}{{end}}"`   // --bestn: report best N results per query

	ShowAlignment string `buildarg:"{{if .}}--showalignment{{split}}{{.}}{{end}}"` // --showalignment: yes/no
	ShowVulgar    string `buildarg:"{{if .}}--showvulgar{{split}}{{.}}{{end}}"`    // --showvulgar: yes/no
	ShowTargetGFF string `buildarg:"{{if .}}--showtargetgff{{split}}{{.}}{{end}}"` // --showtargetgff: yes/no
	RYO           string `buildarg:"{{if .}}--ryo{{split}}{{.}}{{end}}"`           // --ryo: roll-your-own output format
}

// New returns a protein2genome search of query against target with the
// output options Parse depends on.
func New(cmd, target, query string, percent, bestN int) Exonerate {
	return Exonerate{
		Cmd:           cmd,
		Model:         "protein2genome",
		Target:        target,
		Query:         query,
		Percent:       percent,
		BestN:         bestN,
		ShowAlignment: "no",
		ShowVulgar:    "no",
		ShowTargetGFF: "yes",
		RYO:           ryoFormat,
	}
}

// BuildCommand returns an exec.Cmd built from the parameters in e.
func (e Exonerate) BuildCommand() (*exec.Cmd, error) {
	if e.Target == "" || e.Query == "" {
		return nil, ErrMissingRequired
	}
	cl := external.Must(external.Build(e))
	return exec.Command(cl[0], cl[1:]...), nil
}
