package config

import "testing"

func TestParseConditionNumeric(t *testing.T) {
	tests := []struct {
		in  string
		op  Op
		num float64
	}{
		{"> 1000", OpGT, 1000},
		{">1000", OpGT, 1000},
		{"< 19.5", OpLT, 19.5},
		{">= 800", OpGE, 800},
		{"<= 45", OpLE, 45},
		{"== 0", OpEQ, 0},
		{"!= -3.5", OpNE, -3.5},
		{"  >   1500  ", OpGT, 1500},
	}
	for _, tt := range tests {
		cond, err := parseCondition("test", tt.in)
		if err != nil {
			t.Errorf("parseCondition(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if cond.Op != tt.op {
			t.Errorf("parseCondition(%q): op = %q, want %q", tt.in, cond.Op, tt.op)
		}
		if !cond.Numeric {
			t.Errorf("parseCondition(%q): expected numeric literal", tt.in)
		}
		if cond.Num != tt.num {
			t.Errorf("parseCondition(%q): num = %g, want %g", tt.in, cond.Num, tt.num)
		}
	}
}

func TestParseConditionString(t *testing.T) {
	tests := []struct {
		in   string
		op   Op
		text string
	}{
		{"== 'ON'", OpEQ, "ON"},
		{`== "open"`, OpEQ, "open"},
		{"!= 'heat'", OpNE, "heat"},
		{"== unquoted", OpEQ, "unquoted"},
	}
	for _, tt := range tests {
		cond, err := parseCondition("test", tt.in)
		if err != nil {
			t.Errorf("parseCondition(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if cond.Op != tt.op {
			t.Errorf("parseCondition(%q): op = %q, want %q", tt.in, cond.Op, tt.op)
		}
		if cond.Numeric {
			t.Errorf("parseCondition(%q): expected string literal", tt.in)
		}
		if cond.Text != tt.text {
			t.Errorf("parseCondition(%q): text = %q, want %q", tt.in, cond.Text, tt.text)
		}
	}
}

func TestParseConditionRejectsOrderedStringLiteral(t *testing.T) {
	// > and < on non-numeric literals are configuration errors, caught at
	// load time rather than silently never matching.
	for _, in := range []string{"> 'ON'", "< open", ">= \"high\"", "<= x"} {
		if _, err := parseCondition("test", in); err == nil {
			t.Errorf("parseCondition(%q): expected error, got none", in)
		}
	}
}

func TestParseConditionMalformed(t *testing.T) {
	for _, in := range []string{"", "1000", "=> 5", "co2 > 5", ">"} {
		if _, err := parseCondition("test", in); err == nil {
			t.Errorf("parseCondition(%q): expected error, got none", in)
		}
	}
}

func TestParseSource(t *testing.T) {
	tests := []struct {
		in    string
		kind  SourceKind
		field string
	}{
		{"sensor.co2", SourceSensor, "co2"},
		{"sensor.temperature", SourceSensor, "temperature"},
		{"sensor.humidity", SourceSensor, "humidity"},
		{"mqtt.office_temp", SourceMQTT, "office_temp"},
	}
	for _, tt := range tests {
		src, err := parseSource("test", tt.in)
		if err != nil {
			t.Errorf("parseSource(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if src.Kind != tt.kind || src.Field != tt.field {
			t.Errorf("parseSource(%q) = %v, want {%s %s}", tt.in, src, tt.kind, tt.field)
		}
	}
}

func TestParseSourceInvalid(t *testing.T) {
	for _, in := range []string{"", "co2", "sensor.", "sensor.pressure", "kafka.topic", "mqtt."} {
		if _, err := parseSource("test", in); err == nil {
			t.Errorf("parseSource(%q): expected error, got none", in)
		}
	}
}
