package attr

import (
	"fmt"
	"strconv"
	"strings"
)

// Annotation renders the record's fact string:
//
//	<Method>=<id>;IS=<True|False>;Introns=<n>
func (r Record) Annotation() string {
	return fmt.Sprintf("%s=%s;IS=%s;Introns=%d",
		r.Origin.Method, r.Origin.ID, formatBool(r.InternalStop), r.Introns)
}

// ParseAnnotation parses a fact string produced by Record.Annotation.
func ParseAnnotation(s string) (origin Origin, internalStop bool, introns int, err error) {
	parts := strings.Split(s, ";")
	if len(parts) != 3 {
		return Origin{}, false, 0, fmt.Errorf("annotation %q: expected 3 fields, got %d", s, len(parts))
	}

	tag, id, ok := strings.Cut(parts[0], "=")
	if !ok {
		return Origin{}, false, 0, fmt.Errorf("annotation %q: missing method id", s)
	}
	method, ok := ParseMethod(tag)
	if !ok {
		return Origin{}, false, 0, fmt.Errorf("annotation %q: unknown method %q", s, tag)
	}

	is, ok := strings.CutPrefix(parts[1], "IS=")
	if !ok {
		return Origin{}, false, 0, fmt.Errorf("annotation %q: missing IS field", s)
	}
	internalStop, err = parseBool(is)
	if err != nil {
		return Origin{}, false, 0, fmt.Errorf("annotation %q: %w", s, err)
	}

	n, ok := strings.CutPrefix(parts[2], "Introns=")
	if !ok {
		return Origin{}, false, 0, fmt.Errorf("annotation %q: missing Introns field", s)
	}
	introns, err = strconv.Atoi(n)
	if err != nil {
		return Origin{}, false, 0, fmt.Errorf("annotation %q: parse introns: %w", s, err)
	}
	if introns < 0 {
		return Origin{}, false, 0, fmt.Errorf("annotation %q: negative intron count", s)
	}

	return Origin{Method: method, ID: id}, internalStop, introns, nil
}

// formatBool keeps the capitalised spelling downstream tools expect.
func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func parseBool(s string) (bool, error) {
	switch s {
	case "True":
		return true, nil
	case "False":
		return false, nil
	}
	return false, fmt.Errorf("invalid flag %q", s)
}
