package catalog

import (
	"strings"
)

type ValueKind int

const (
	KindText ValueKind = iota
	KindFlag
	KindList
)

// Value holds exactly one of Text, Flag or List, selected by Kind.
type Value struct {
	Kind ValueKind
	Text string
	Flag bool
	List []string
}

func TextValue(s string) Value {
	return Value{Kind: KindText, Text: s}
}

func FlagValue(b bool) Value {
	return Value{Kind: KindFlag, Flag: b}
}

func ListValue(l []string) Value {
	return Value{Kind: KindList, List: l}
}

type Field struct {
	Name  string
	Value Value
}

const (
	classFormatPairSeparator = "  "
	labelValueSeparator      = ": "

	classNumberLabel = "Class#"
	gradingLabel     = "Grading"
	notesLabel       = "Notes"

	passFailMarker    = "pass/fail option,"
	fifthCourseMarker = "fifth course option"

	passFailField     = "passfail"
	fifthCourseField  = "fifthcourse"
	crossListingField = "crosslistings"
)

var distributionRequirements = map[string]DistributionRequirement{
	"div_d1":  DivisionI,
	"div_d2":  DivisionII,
	"div_d3":  DivisionIII,
	"wac_wac": WritingIntensive,
	"qfr_qfr": QuantitativeFormalReasoning,
	"dpe_dpe": DifferencePowerEquity,
}

func ParseDistribution(code string) (DistributionRequirement, error) {
	requirement, okay := distributionRequirements[strings.ToLower(strings.TrimSpace(code))]
	if !okay {
		return "", schemaDrift("unknown distribution requirement code %q", code)
	}
	return requirement, nil
}

// ParseListField splits a semicolon-delimited value. Empty elements are kept.
func ParseListField(name string, raw string) []Field {
	parts := strings.Split(raw, ";")
	items := make([]string, len(parts))
	for i, part := range parts {
		items[i] = strings.TrimSpace(part)
	}
	return []Field{{Name: name, Value: ListValue(items)}}
}

// ParseClassFormat decomposes "Label: value" pairs separated by two spaces.
func ParseClassFormat(raw string) ([]Field, error) {
	var fields []Field
	for _, pair := range strings.Split(strings.TrimSpace(raw), classFormatPairSeparator) {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		label, value, found := strings.Cut(pair, labelValueSeparator)
		if !found {
			return nil, unparsable("class format pair %q has no label", pair)
		}
		label = strings.TrimSpace(label)

		switch label {
		case classNumberLabel:
			// Already captured by the section table
		case gradingLabel:
			gradingFields, err := parseGrading(value)
			if err != nil {
				return nil, err
			}
			fields = append(fields, gradingFields...)
		default:
			fields = append(fields, Field{Name: strings.ToLower(label), Value: TextValue(strings.TrimSpace(value))})
		}
	}
	return fields, nil
}

func parseGrading(value string) ([]Field, error) {
	var fields []Field
	for _, line := range strings.Split(value, "\n") {
		line = strings.TrimSpace(line)

		var name string
		switch {
		case strings.HasSuffix(line, passFailMarker):
			name = passFailField
		case strings.HasSuffix(line, fifthCourseMarker):
			name = fifthCourseField
		default:
			continue
		}

		answer, _, _ := strings.Cut(line, ",")
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "yes":
			fields = append(fields, Field{Name: name, Value: FlagValue(true)})
		case "no":
			fields = append(fields, Field{Name: name, Value: FlagValue(false)})
		default:
			return nil, schemaDrift("grading option %q is neither yes nor no", line)
		}
	}
	return fields, nil
}

// ParseNotesField turns the "Notes" block into cross-listings. The block repeats
// reference and note lines after a three line preamble.
func ParseNotesField(label string, raw string) []Field {
	if label != notesLabel {
		name := strings.ToLower(strings.ReplaceAll(label, " ", ""))
		return []Field{{Name: name, Value: TextValue(strings.TrimSpace(raw))}}
	}

	lines := strings.Split(raw, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	crossListings := []string{}
	for i := 3; i+1 < len(lines); i += 2 {
		crossListings = append(crossListings, lines[i]+labelValueSeparator+lines[i+1])
	}
	return []Field{{Name: crossListingField, Value: ListValue(crossListings)}}
}
