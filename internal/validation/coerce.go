package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Messages reported for fields that cannot be coerced.
const (
	MsgRequired     = "is required"
	MsgNotNumber    = "must be a number"
	MsgNotInteger   = "must be an integer"
	MsgNotStringish = "must be a string or a number"
	MsgOutOfRange   = "is out of range"
)

// Numbers longer than maxNumberLength characters, or with an exponent
// beyond ±maxExponent, are rejected before any arithmetic touches them.
const (
	maxNumberLength = 64
	maxExponent     = 30
)

var (
	minInt = decimal.NewFromInt(math.MinInt)
	maxInt = decimal.NewFromInt(math.MaxInt)
)

var (
	errRequired     = errors.New(MsgRequired)
	errNotNumber    = errors.New(MsgNotNumber)
	errNotInteger   = errors.New(MsgNotInteger)
	errNotStringish = errors.New(MsgNotStringish)
	errOutOfRange   = errors.New(MsgOutOfRange)
)

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Decimal coerces a JSON number or numeric string into an exact decimal.
// "22", 22 and 22.0 are all accepted; true, "abc" and objects are not.
func Decimal(raw json.RawMessage) (decimal.Decimal, error) {
	if isAbsent(raw) {
		return decimal.Zero, errRequired
	}

	raw = bytes.TrimSpace(raw)
	var text string
	switch raw[0] {
	case '"':
		if err := json.Unmarshal(raw, &text); err != nil {
			return decimal.Zero, errNotNumber
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return decimal.Zero, errRequired
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		text = string(bytes.TrimSpace(raw))
	default:
		return decimal.Zero, errNotNumber
	}

	if len(text) > maxNumberLength {
		return decimal.Zero, errOutOfRange
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, errNotNumber
	}
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return decimal.Zero, errOutOfRange
	}
	return d, nil
}

// Int coerces a JSON number or numeric string into an int.
// The value must be integral: 3 and "3" and 3.0 pass, 3.5 does not.
func Int(raw json.RawMessage) (int, error) {
	d, err := Decimal(raw)
	if err != nil {
		if errors.Is(err, errNotNumber) {
			return 0, errNotInteger
		}
		return 0, err
	}
	return IntFromDecimal(d)
}

// IntFromDecimal converts an integral decimal into an int, rejecting
// fractions and values an int cannot hold.
func IntFromDecimal(d decimal.Decimal) (int, error) {
	if !d.IsInteger() {
		return 0, errNotInteger
	}
	if d.LessThan(minInt) || d.GreaterThan(maxInt) {
		return 0, errOutOfRange
	}
	return int(d.IntPart()), nil
}

// String accepts a JSON string or number and returns its text form.
// Numbers keep their literal spelling, so 1001 becomes "1001".
// An absent value or an empty string returns "" and no error.
func String(raw json.RawMessage) (string, error) {
	if isAbsent(raw) {
		return "", nil
	}

	raw = bytes.TrimSpace(raw)
	switch raw[0] {
	case '"':
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return "", errNotStringish
		}
		return strings.TrimSpace(text), nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var number json.Number
		if err := json.Unmarshal(raw, &number); err != nil {
			return "", errNotStringish
		}
		return number.String(), nil
	default:
		return "", errNotStringish
	}
}

// Collector gathers coercion failures field by field, in the order the
// fields are visited.
type Collector struct {
	fields   map[string]json.RawMessage
	problems CustomValidationErrors
}

// NewCollector wraps the raw fields of a request body.
func NewCollector(fields map[string]json.RawMessage) *Collector {
	return &Collector{fields: fields}
}

// Decimal reads a required decimal field.
func (c *Collector) Decimal(name string) decimal.Decimal {
	d, err := Decimal(c.fields[name])
	c.record(name, err)
	return d
}

// Int reads a required integer field.
func (c *Collector) Int(name string) int {
	i, err := Int(c.fields[name])
	c.record(name, err)
	return i
}

// OptionalString reads an optional string-or-number field.
func (c *Collector) OptionalString(name string) string {
	s, err := String(c.fields[name])
	c.record(name, err)
	return s
}

// Err returns the collected problems, or nil when every field coerced.
func (c *Collector) Err() error {
	if len(c.problems) == 0 {
		return nil
	}
	return c.problems
}

func (c *Collector) record(name string, err error) {
	if err != nil {
		c.problems = append(c.problems, CustomValidationError{Field: name, Message: err.Error()})
	}
}
