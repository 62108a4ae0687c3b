package config

import (
	"regexp"
	"strconv"
	"strings"
)

// Op is a comparison operator usable in an alert condition.
type Op string

const (
	OpGT Op = ">"
	OpLT Op = "<"
	OpGE Op = ">="
	OpLE Op = "<="
	OpEQ Op = "=="
	OpNE Op = "!="
)

// Ordered reports whether the operator requires numeric comparison.
func (o Op) Ordered() bool {
	switch o {
	case OpGT, OpLT, OpGE, OpLE:
		return true
	}
	return false
}

// Condition is a parsed alert predicate: one operator plus one literal.
// Numeric literals compare numerically; quoted (or unparseable) literals
// compare as strings and support == and != only. Parsing happens once at
// load time — evaluation is a closed-form match over these fields.
type Condition struct {
	Op      Op
	Num     float64 // parsed literal when Numeric
	Text    string  // raw literal, quotes stripped
	Numeric bool
}

func (c Condition) String() string {
	return string(c.Op) + " " + c.Text
}

// Two-character operators must be matched before their one-character
// prefixes.
var conditionRe = regexp.MustCompile(`^(>=|<=|!=|==|>|<)\s*(.+)$`)

// parseCondition parses strings like "> 1000" or `== 'ON'`. path names the
// YAML location for error reporting.
func parseCondition(path, s string) (Condition, error) {
	m := conditionRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Condition{}, errf(path, "cannot parse %q: expected e.g. \"> 1000\" or \"== 'ON'\"", s)
	}
	op := Op(m[1])
	raw := strings.TrimSpace(m[2])

	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return Condition{Op: op, Num: n, Text: raw, Numeric: true}, nil
	}

	// Strip one matching pair of surrounding quotes for string literals.
	if len(raw) >= 2 && (raw[0] == '\'' || raw[0] == '"') && raw[len(raw)-1] == raw[0] {
		raw = raw[1 : len(raw)-1]
	}
	if op.Ordered() {
		return Condition{}, errf(path, "%s requires a numeric literal, got %q", op, raw)
	}
	return Condition{Op: op, Text: raw}, nil
}

// SourceKind names the namespace an alert condition reads from.
type SourceKind string

const (
	SourceSensor SourceKind = "sensor"
	SourceMQTT   SourceKind = "mqtt"
)

// Sensor field names usable in alert sources and sensor screen items.
const (
	FieldCO2         = "co2"
	FieldTemperature = "temperature"
	FieldHumidity    = "humidity"
)

// Source names the live value an alert condition compares against:
// "sensor.<field>" or "mqtt.<subscription-id>".
type Source struct {
	Kind  SourceKind
	Field string
}

func (s Source) String() string {
	return string(s.Kind) + "." + s.Field
}

func parseSource(path, raw string) (Source, error) {
	ns, field, ok := strings.Cut(raw, ".")
	if !ok || field == "" {
		return Source{}, errf(path, "%q: expected \"sensor.<field>\" or \"mqtt.<id>\"", raw)
	}
	switch SourceKind(ns) {
	case SourceSensor:
		switch field {
		case FieldCO2, FieldTemperature, FieldHumidity:
			return Source{Kind: SourceSensor, Field: field}, nil
		}
		return Source{}, errf(path, "unknown sensor field %q", field)
	case SourceMQTT:
		return Source{Kind: SourceMQTT, Field: field}, nil
	}
	return Source{}, errf(path, "unknown namespace %q", ns)
}
