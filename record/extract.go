package record

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind classifies what Extract made of a token sequence.
type Kind int

const (
	// KindRecord means a record was produced.
	KindRecord Kind = iota
	// KindNotARow means the line had fewer than MinTokens tokens. Headers,
	// footers and OCR debris land here; it is not an error.
	KindNotARow
	// KindNumericFieldInvalid means the line was row-shaped but one of the
	// four trailing numeric tokens did not parse.
	KindNumericFieldInvalid
)

func (k Kind) String() string {
	switch k {
	case KindRecord:
		return "record"
	case KindNotARow:
		return "not_a_row"
	case KindNumericFieldInvalid:
		return "numeric_field_invalid"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Outcome describes the result of extracting one line.
type Outcome struct {
	Kind Kind
	// Tokens is the number of tokens the line had.
	Tokens int
	// Field and Token name the numeric field that failed to parse. They are
	// only set for KindNumericFieldInvalid.
	Field string
	Token string
}

// OK reports whether a record was produced.
func (o Outcome) OK() bool { return o.Kind == KindRecord }

func (o Outcome) String() string {
	if o.Kind == KindNumericFieldInvalid {
		return fmt.Sprintf("%s: %s=%q", o.Kind, o.Field, o.Token)
	}
	return fmt.Sprintf("%s (%d tokens)", o.Kind, o.Tokens)
}

// numeric fields, counted back from the end of the token sequence.
var numericFields = [...]struct {
	name   string
	offset int
}{
	{"cones", 4},
	{"gross_weight", 3},
	{"tare_weight", 2},
	{"net_weight", 1},
}

// Extract maps a token sequence onto a Record. Case, lot and yarn are read from
// the front; color, cones, gross, tare and net from the back; whatever sits in
// between is the description. The record is only produced if all four numeric
// tokens parse.
func Extract(tokens []string) (Record, Outcome) {
	n := len(tokens)
	if n < MinTokens {
		return Record{}, Outcome{Kind: KindNotARow, Tokens: n}
	}

	var nums [len(numericFields)]float64
	for i, f := range numericFields {
		tok := tokens[n-f.offset]
		v, ok := ParseNumber(tok)
		if !ok {
			return Record{}, Outcome{Kind: KindNumericFieldInvalid, Tokens: n, Field: f.name, Token: tok}
		}
		nums[i] = v
	}
	cones, ok := truncate(nums[0])
	if !ok {
		return Record{}, Outcome{Kind: KindNumericFieldInvalid, Tokens: n, Field: "cones", Token: tokens[n-4]}
	}
	tare, ok := truncate(nums[2])
	if !ok {
		return Record{}, Outcome{Kind: KindNumericFieldInvalid, Tokens: n, Field: "tare_weight", Token: tokens[n-2]}
	}

	rec := Record{
		CaseNumber:  tokens[0],
		LotNumber:   tokens[1],
		YarnID:      tokens[2],
		Description: strings.Join(tokens[3:n-5], " "),
		Color:       tokens[n-5],
		Cones:       cones,
		GrossWeight: nums[1],
		TareWeight:  tare,
		NetWeight:   nums[3],
	}
	return rec, Outcome{Kind: KindRecord, Tokens: n}
}

// ParseLine runs a raw OCR line through Sanitize, Tokenize and Extract.
func ParseLine(raw string) (Record, Outcome) {
	return Extract(Tokenize(Sanitize(raw)))
}

// ParseNumber parses a decimal literal: an optional sign, digits, and at most
// one '.', with at least one digit. Exponents, hex, underscores, "inf" and
// "nan" are rejected even though strconv would take them, since on a scanned
// page they are recognition errors and not numbers.
func ParseNumber(tok string) (float64, bool) {
	s := tok
	if s != "" && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	if s == "" {
		return 0, false
	}
	digits, dots := 0, 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			digits++
		case c == '.':
			dots++
			if dots > 1 {
				return 0, false
			}
		default:
			return 0, false
		}
	}
	if digits == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// truncate converts toward zero, refusing values an int cannot hold.
func truncate(v float64) (int, bool) {
	t := math.Trunc(v)
	if t >= math.MaxInt || t < math.MinInt {
		return 0, false
	}
	return int(t), true
}
