package catalog

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	headerSelector      = ".title-bar h1"
	descriptionSelector = "div.catalogdesc"
	specificsSelector   = "div.specifics"

	classCellSelector       = ".Rtable-cell.classes"
	instructorCellSelector  = ".Rtable-cell.instructors"
	timeCellSelector        = ".Rtable-cell.times"
	classNumberCellSelector = ".Rtable-cell.classnbr"

	distributionsLabel = "Distributions"
	classFormatEntry   = "classformat"
	notesEntry         = "notes"
)

func nodeText(node *html.Node) string {
	var buffer bytes.Buffer
	writeNodeText(node, &buffer)
	return buffer.String()
}

func writeNodeText(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		writeNodeText(child, buffer)
	}
}

// ParseCourse reads one course detail page. A nil Course with ErrUnparsable
// means the page should be skipped; ErrSchemaDrift must stop extraction.
func ParseCourse(document *goquery.Document) (*Course, error) {
	builder := newCourseBuilder()

	header := document.Find(headerSelector).First()
	if header.Length() == 0 {
		return nil, unparsable("missing course header")
	}
	dept, code, title, requirements, err := parseHeader(header)
	if err != nil {
		return nil, err
	}
	builder.header(dept, code, title, requirements)

	description := document.Find(descriptionSelector).First()
	if description.Length() == 0 {
		return nil, unparsable("missing course description")
	}
	builder.description(strings.TrimSpace(description.Text()))

	specifics := document.Find(specificsSelector).First()
	if specifics.Length() == 0 {
		return nil, unparsable("missing course specifics")
	}
	for _, node := range specifics.Find("div").Nodes {
		fields, err := parseSpecificsEntry(goquery.NewDocumentFromNode(node).Selection)
		if err != nil {
			return nil, err
		}
		for _, field := range fields {
			if err := builder.apply(field); err != nil {
				return nil, err
			}
		}
	}

	sections, err := parseSections(
		document.Find(classCellSelector),
		document.Find(instructorCellSelector),
		document.Find(timeCellSelector),
		document.Find(classNumberCellSelector),
	)
	if err != nil {
		return nil, err
	}
	builder.sections(sections)

	return builder.build(), nil
}

func parseHeader(header *goquery.Selection) (string, int, string, []DistributionRequirement, error) {
	anchor := header.Find("a").First()
	if anchor.Length() == 0 {
		return "", 0, "", nil, unparsable("missing department link in header")
	}
	dept := strings.TrimSpace(anchor.Text())
	if dept == "" {
		return "", 0, "", nil, unparsable("empty department in header")
	}

	requirements := []DistributionRequirement{}
	requirementsSpan := header.Find("span").First()
	var requirementsNode *html.Node
	if requirementsSpan.Length() > 0 {
		requirementsNode = requirementsSpan.Nodes[0]
		for _, node := range requirementsSpan.Find("span").Nodes {
			classes := strings.Fields(goquery.NewDocumentFromNode(node).AttrOr("class", ""))
			if len(classes) < 2 {
				return "", 0, "", nil, unparsable("distribution marker without code")
			}
			requirement, err := ParseDistribution(classes[1])
			if err != nil {
				return "", 0, "", nil, err
			}
			requirements = append(requirements, requirement)
		}
	}

	var rest strings.Builder
	for node := anchor.Nodes[0].NextSibling; node != nil; node = node.NextSibling {
		if node == requirementsNode {
			continue
		}
		rest.WriteString(nodeText(node))
	}

	words := strings.Fields(rest.String())
	if len(words) == 0 {
		return "", 0, "", nil, unparsable("missing course number in header")
	}
	code, err := strconv.Atoi(words[0])
	if err != nil {
		return "", 0, "", nil, unparsable("course number %q is not an integer", words[0])
	}
	title := strings.Join(words[1:], " ")

	return dept, code, title, requirements, nil
}

func parseSpecificsEntry(entry *goquery.Selection) ([]Field, error) {
	classes := strings.Fields(entry.AttrOr("class", ""))
	if len(classes) == 0 {
		return nil, unparsable("specifics entry without a class")
	}
	name := classes[0]

	labelSpan := entry.Find("span.label").First()
	if labelSpan.Length() == 0 {
		return nil, unparsable("specifics entry %q without a label", name)
	}
	label := strings.ReplaceAll(strings.TrimSpace(labelSpan.Text()), ":", "")
	if label == distributionsLabel {
		// Already read from the header
		return nil, nil
	}

	valueSpan := entry.Find("span.value").First()
	if valueSpan.Length() == 0 {
		return nil, unparsable("specifics entry %q without a value", name)
	}
	raw := valueSpan.Text()

	switch name {
	case classFormatEntry:
		return ParseClassFormat(raw)
	case notesEntry:
		return ParseNotesField(label, raw), nil
	default:
		return ParseListField(name, strings.TrimSpace(raw)), nil
	}
}

func tail(selection *goquery.Selection) []*html.Node {
	if len(selection.Nodes) == 0 {
		return nil
	}
	// First cell of every column is the table header
	return selection.Nodes[1:]
}

func parseSections(classCells, instructorCells, timeCells, numberCells *goquery.Selection) ([]Section, error) {
	classNodes := tail(classCells)
	instructorNodes := tail(instructorCells)
	timeNodes := tail(timeCells)
	numberNodes := tail(numberCells)

	rows := len(classNodes)
	if len(instructorNodes) != rows || len(timeNodes) != rows || len(numberNodes) != rows {
		return nil, unparsable(
			"section columns disagree: %d classes, %d instructors, %d times, %d numbers",
			len(classNodes), len(instructorNodes), len(timeNodes), len(numberNodes),
		)
	}

	sections := make([]Section, 0, rows)
	for i := 0; i < rows; i++ {
		sectionType, err := parseSectionType(classNodes[i])
		if err != nil {
			return nil, err
		}
		instructors, err := parseInstructors(instructorNodes[i])
		if err != nil {
			return nil, err
		}
		timePatterns, err := parseTimePatterns(timeNodes[i])
		if err != nil {
			return nil, err
		}
		number, err := parseSectionNumber(numberNodes[i])
		if err != nil {
			return nil, err
		}

		sections = append(sections, Section{
			Number:       number,
			Type:         sectionType,
			Instructors:  instructors,
			TimePatterns: timePatterns,
		})
	}
	return sections, nil
}

func parseSectionType(cell *html.Node) (string, error) {
	last := cell.LastChild
	if last == nil || last.Type != html.TextNode {
		return "", unparsable("section class cell does not end in text")
	}
	words := strings.Fields(last.Data)
	if len(words) == 0 {
		return "", unparsable("empty section type")
	}
	return words[0], nil
}

func parseInstructors(cell *html.Node) ([]string, error) {
	instructors := []string{}
	for _, node := range goquery.NewDocumentFromNode(cell).Find("span").Nodes {
		anchor := goquery.NewDocumentFromNode(node).Find("a").First()
		if anchor.Length() == 0 {
			return nil, unparsable("instructor entry without a link")
		}
		instructors = append(instructors, strings.TrimSpace(anchor.Text()))
	}
	return instructors, nil
}

// Meetings inside the time cell are separated by <hr>; <br> only wraps lines.
func parseTimePatterns(cell *html.Node) ([]string, error) {
	span := goquery.NewDocumentFromNode(cell).Find("span").First()
	if span.Length() == 0 {
		return nil, unparsable("time cell without a span")
	}

	var patterns []string
	var current strings.Builder
	for child := span.Nodes[0].FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode {
			switch child.Data {
			case "hr":
				patterns = append(patterns, strings.TrimSpace(current.String()))
				current.Reset()
				continue
			case "br":
				continue
			}
		}
		current.WriteString(nodeText(child))
	}
	patterns = append(patterns, strings.TrimSpace(current.String()))

	return patterns, nil
}

func parseSectionNumber(cell *html.Node) (int, error) {
	text := strings.TrimSpace(nodeText(cell))
	number, err := strconv.Atoi(text)
	if err != nil {
		return 0, unparsable("section number %q is not an integer", text)
	}
	return number, nil
}
