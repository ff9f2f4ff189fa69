package record

import (
	"strings"
	"testing"
	"unicode"
)

func FuzzParseLine(f *testing.F) {
	f.Add("A100 L55 Y3 Blue Mohair 2ply 14 Red 12 450 5 445")
	f.Add("A1 L1 Y1 Desc Red 3 20.5 2")
	f.Add("C1 L1 Y1 Red 3 20.5 2 18.5")
	f.Add("C1# L1| Y1_ Green 4 30.0 3 27.0")
	f.Add("C L Y D Red 99999999999999999999 450 5 445")
	f.Add("\tA1 L1  Y1 Wool\x00 Red 4S 10 1 9\r")

	f.Fuzz(func(t *testing.T, line string) {
		clean := Sanitize(line)
		if again := Sanitize(clean); again != clean {
			t.Fatalf("Sanitize not idempotent: %q -> %q", clean, again)
		}

		tokens := Tokenize(clean)
		for _, tok := range tokens {
			if tok == "" {
				t.Fatalf("empty token in %q", tokens)
			}
			if strings.IndexFunc(tok, unicode.IsSpace) >= 0 {
				t.Fatalf("token %q contains whitespace", tok)
			}
		}

		rec, out := ParseLine(line)
		if out.Tokens != len(tokens) {
			t.Fatalf("outcome counted %d tokens, tokenizer gave %d", out.Tokens, len(tokens))
		}
		again, out2 := ParseLine(line)
		if again != rec || out2 != out {
			t.Fatalf("ParseLine not deterministic: %+v/%+v vs %+v/%+v", rec, out, again, out2)
		}

		if out.Kind != KindRecord {
			if rec != (Record{}) {
				t.Fatalf("partial record for %s: %+v", out, rec)
			}
			return
		}
		n := len(tokens)
		if n < MinTokens {
			t.Fatalf("record from %d tokens", n)
		}
		if rec.CaseNumber != tokens[0] || rec.LotNumber != tokens[1] || rec.YarnID != tokens[2] {
			t.Fatalf("leading fields %+v do not match tokens %q", rec, tokens)
		}
		if rec.Color != tokens[n-5] || rec.Description != strings.Join(tokens[3:n-5], " ") {
			t.Fatalf("description/color %+v do not match tokens %q", rec, tokens)
		}
		if gross, _ := ParseNumber(tokens[n-3]); gross != rec.GrossWeight {
			t.Fatalf("gross weight = %v, token %q", rec.GrossWeight, tokens[n-3])
		}
		if net, _ := ParseNumber(tokens[n-1]); net != rec.NetWeight {
			t.Fatalf("net weight = %v, token %q", rec.NetWeight, tokens[n-1])
		}
	})
}
