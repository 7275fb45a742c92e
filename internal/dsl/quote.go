package dsl

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// ErrSerialization classifies values the DSL cannot represent.
var ErrSerialization = errors.New("serialization failed")

// SerializationError reports the field and value that could not be written.
type SerializationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *SerializationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s %q: %s", ErrSerialization.Error(), e.Field, e.Value, e.Reason)
}

func (e *SerializationError) Unwrap() error { return ErrSerialization }

// QuotePolicy decides what happens to a double quote inside a quoted value.
type QuotePolicy string

const (
	// QuoteEscape writes \" for a quote and \\ for a backslash.
	QuoteEscape QuotePolicy = "escape"
	// QuoteReject fails with ErrSerialization on any quote.
	QuoteReject QuotePolicy = "reject"
)

// ParseQuotePolicy maps a settings value to a policy. Empty means escape.
func ParseQuotePolicy(s string) (QuotePolicy, error) {
	switch QuotePolicy(s) {
	case "", QuoteEscape:
		return QuoteEscape, nil
	case QuoteReject:
		return QuoteReject, nil
	}
	return "", fmt.Errorf("unknown quote policy %q (want %q or %q)", s, QuoteEscape, QuoteReject)
}

var identPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// checkIdent fails unless id is a valid flat DSL identifier.
func checkIdent(field, id string) error {
	if !identPattern.MatchString(id) {
		return &SerializationError{Field: field, Value: id, Reason: "identifier must match [A-Za-z0-9_-]+"}
	}
	return nil
}

// quote renders value as a double-quoted DSL string under p. Control
// characters never fit on a single DSL line and always fail.
func quote(p QuotePolicy, field, value string) (string, error) {
	for _, r := range value {
		if unicode.IsControl(r) {
			return "", &SerializationError{Field: field, Value: value, Reason: "control characters are not representable"}
		}
	}
	switch p {
	case QuoteReject:
		if strings.ContainsRune(value, '"') {
			return "", &SerializationError{Field: field, Value: value, Reason: "double quotes are not allowed"}
		}
		return `"` + value + `"`, nil
	default:
		r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
		return `"` + r.Replace(value) + `"`, nil
	}
}

// bare validates a token written without quotes, such as a URL.
func bare(field, value string) (string, error) {
	if value == "" || strings.ContainsAny(value, "\"{} \t\r\n") {
		return "", &SerializationError{Field: field, Value: value, Reason: "must be a single unquoted token"}
	}
	return value, nil
}

// Token is one whitespace-separated item of a DSL line.
type Token struct {
	Text   string
	Quoted bool
}

// Tokenize splits one DSL line into tokens, removing quotes and undoing the
// escapes that p applied. It is the inverse of the quoting used by the
// serializer, so rendered values can be recovered from a line.
func Tokenize(line string, p QuotePolicy) ([]Token, error) {
	var (
		toks   []Token
		cur    strings.Builder
		inQ    bool
		inTok  bool
		escape bool
	)
	flush := func(quoted bool) {
		toks = append(toks, Token{Text: cur.String(), Quoted: quoted})
		cur.Reset()
		inTok = false
	}
	for _, r := range line {
		switch {
		case escape:
			cur.WriteRune(r)
			escape = false
		case inQ && r == '\\' && p != QuoteReject:
			escape = true
		case inQ && r == '"':
			inQ = false
			flush(true)
		case inQ:
			cur.WriteRune(r)
		case r == '"':
			if inTok {
				flush(false)
			}
			inQ = true
		case unicode.IsSpace(r):
			if inTok {
				flush(false)
			}
		default:
			inTok = true
			cur.WriteRune(r)
		}
	}
	if inQ || escape {
		return nil, fmt.Errorf("tokenize: unterminated quoted string in %q", line)
	}
	if inTok {
		flush(false)
	}
	return toks, nil
}
