package ir

import (
	"bytes"
	"fmt"
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 canonical JSON for hashing and golden
// comparison.
//
// Differences from json.Marshal:
//  1. Object keys sorted by UTF-16 code units
//  2. No HTML escaping
//  3. Strings are NFC normalized
//  4. Only IRValue types are accepted, so floats cannot appear
func MarshalCanonical(v IRValue) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v IRValue) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("null is forbidden in canonical JSON")
	case IRString:
		return writeCanonicalString(buf, string(val))
	case IRInt:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case IRBool:
		buf.WriteString(strconv.FormatBool(bool(val)))
	case IRArray:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case IRObject:
		buf.WriteByte('{')
		for i, k := range val.SortedKeys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonicalString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return fmt.Errorf("object[%q]: %w", k, err)
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
	return nil
}

// writeCanonicalString writes an NFC-normalized JSON string per RFC 8785:
// only the quote, backslash and control characters are escaped. HTML
// characters and U+2028/U+2029 stay literal.
func writeCanonicalString(buf *bytes.Buffer, s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("invalid UTF-8 in string %q", s)
	}
	buf.WriteByte('"')
	for _, r := range norm.NFC.String(s) {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(buf, `\u%04x`, r)
				continue
			}
			buf.WriteRune(r)
		}
	}
	buf.WriteByte('"')
	return nil
}

// IR converts the circuit to its canonical value form.
func (c *Circuit) IR() IRObject {
	ops := make(IRArray, len(c.Operations))
	for i, op := range c.Operations {
		ops[i] = op.IR()
	}
	return IRObject{
		"preparation": IRString(c.Preparation),
		"qubits":      IRInt(c.Qubits),
		"registers":   IRInt(c.Registers),
		"operations":  ops,
	}
}

// IR converts the operation to its canonical value form.
// Optional fields are omitted rather than encoded as null.
func (op Operation) IR() IRObject {
	obj := IRObject{
		"phase":  IRString(op.Phase),
		"gate":   IRString(op.Gate),
		"target": IRInt(op.Target),
	}
	if op.Control != nil {
		obj["control"] = IRInt(*op.Control)
	}
	if op.Angle != nil {
		obj["angle"] = IRObject{"num": IRInt(op.Angle.Num), "den": IRInt(op.Angle.Den)}
	}
	if op.Register != nil {
		obj["register"] = IRInt(*op.Register)
	}
	if op.Condition != nil {
		obj["condition"] = IRObject{
			"register": IRInt(op.Condition.Register),
			"value":    IRInt(op.Condition.Value),
		}
	}
	return obj
}

// IR converts the counts to their canonical value form.
func (c Counts) IR() IRObject {
	obj := make(IRObject, len(c))
	for k, v := range c {
		obj[k] = IRInt(v)
	}
	return obj
}
