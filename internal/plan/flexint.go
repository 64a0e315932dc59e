package plan

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode"
)

// FlexInt is an int that the generator may deliver as a JSON number or as a
// free-text string ("3", "8-12", "90s"). String values are parsed from their
// leading digits; anything unparsable becomes 0 rather than an error.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			*f = 0
			return nil
		}
		*f = FlexInt(LeadingInt(str))
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		*f = 0
		return nil
	}
	*f = FlexInt(int(n))
	return nil
}

func (f FlexInt) Int() int { return int(f) }

// ProteinGrams is a protein amount that may arrive as a JSON number or as a
// string like "25g" or "approx. 30 g". Strings are reduced to their digits
// before parsing; unparsable input is 0, never an error.
type ProteinGrams int

func (p *ProteinGrams) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*p = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			*p = 0
			return nil
		}
		*p = ProteinGrams(DigitsInt(str))
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		*p = 0
		return nil
	}
	*p = ProteinGrams(int(n))
	return nil
}

func (p ProteinGrams) Int() int { return int(p) }

// LeadingInt parses the integer prefix of s, skipping leading whitespace.
// Returns 0 when s has no digit prefix.
func LeadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// DigitsInt strips every non-digit rune from s and parses what remains.
// This is the lenient protein parse: "25g" -> 25, "approx. 30 g" -> 30,
// garbage -> 0.
func DigitsInt(s string) int {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0
	}
	return n
}
