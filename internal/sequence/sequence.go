// Package sequence derives human-readable sequential identifiers such as
// ORD-2024-003 or TASK-001 from the set of identifiers already stored.
package sequence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrSequenceExhausted is returned when the bounded collision retry loop
	// runs out of attempts.
	ErrSequenceExhausted = errors.New("sequence_exhausted")

	// ErrDuplicateIdentifier is returned when the storage layer still reports
	// a uniqueness violation after the retry loop.
	ErrDuplicateIdentifier = errors.New("duplicate_identifier")
)

// maxSequence bounds the per-scope sequence number.
const maxSequence = 9999

// Kind describes one identifier family.
type Kind struct {
	Prefix     string
	YearScoped bool
	Width      int
	// Joined identifiers have a dash between prefix and number (ORD-2024-001,
	// TASK-001). RFID tags do not (RF001).
	NoDash bool
}

// Predefined identifier kinds.
var (
	KindOrder    = Kind{Prefix: "ORD", YearScoped: true, Width: 3}
	KindInvoice  = Kind{Prefix: "INV", YearScoped: true, Width: 3}
	KindTask     = Kind{Prefix: "TASK", Width: 3}
	KindDelivery = Kind{Prefix: "DEL", Width: 3}
	KindRFIDTag  = Kind{Prefix: "RF", Width: 3, NoDash: true}
)

// scope returns the identifier prefix up to the numeric tail.
func (k Kind) scope(year int) string {
	if k.NoDash {
		return k.Prefix
	}
	if k.YearScoped {
		return fmt.Sprintf("%s-%d-", k.Prefix, year)
	}
	return k.Prefix + "-"
}

// Format renders the identifier for a sequence number.
func (k Kind) Format(year, seq int) string {
	return fmt.Sprintf("%s%0*d", k.scope(year), k.Width, seq)
}

// Next derives the next identifier from the existing set.
//
// The lexicographically maximal identifier in scope is taken and its numeric
// tail incremented. Because the tail is zero padded to a fixed width, string
// ordering matches numeric ordering within a scope; a malformed tail falls
// back to sequence 1.
func Next(kind Kind, year int, existing []string) string {
	scope := kind.scope(year)

	var max string
	for _, id := range existing {
		if !strings.HasPrefix(id, scope) {
			continue
		}
		if max == "" || id > max {
			max = id
		}
	}

	seq := 1
	if max != "" {
		if n, err := parseTail(kind, max); err == nil {
			seq = n + 1
		}
	}

	return kind.Format(year, seq)
}

// NextAfter renders the identifier that follows id, used by the collision
// retry loop. Returns ErrSequenceExhausted once the bound is crossed.
func NextAfter(kind Kind, year int, id string) (string, error) {
	seq, err := parseTail(kind, id)
	if err != nil {
		seq = 0
	}
	seq++
	if seq > maxSequence {
		return "", ErrSequenceExhausted
	}
	return kind.Format(year, seq), nil
}

func parseTail(kind Kind, id string) (int, error) {
	tail := id
	if kind.NoDash {
		tail = strings.TrimPrefix(id, kind.Prefix)
	} else if i := strings.LastIndex(id, "-"); i >= 0 {
		tail = id[i+1:]
	}
	n, err := strconv.Atoi(tail)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("malformed identifier %q", id)
	}
	return n, nil
}
