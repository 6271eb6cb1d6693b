/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package ktlint

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/beevik/etree"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed report.schema.json
var reportSchemaJSON []byte

var (
	reportSchemaOnce sync.Once
	reportSchema     *gojsonschema.Schema
	reportSchemaErr  error
)

func compiledReportSchema() (*gojsonschema.Schema, error) {
	reportSchemaOnce.Do(func() {
		reportSchema, reportSchemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(reportSchemaJSON))
	})
	return reportSchema, reportSchemaErr
}

// ReadReport reads and parses one report file in the given format.
func ReadReport(path string, format ReportFormat) (Document, error) {
	data, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 -- report paths come from operator configuration
	if err != nil {
		return nil, err
	}
	if format == ReportFormatAuto {
		format = detectFormat(path, data)
	}
	switch format {
	case ReportFormatCheckstyle:
		return ParseCheckstyleReport(data, path)
	default:
		return ParseJSONReport(data, path)
	}
}

func detectFormat(path string, data []byte) ReportFormat {
	if strings.EqualFold(filepath.Ext(path), ".xml") {
		return ReportFormatCheckstyle
	}
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("<")) {
		return ReportFormatCheckstyle
	}
	return ReportFormatJSON
}

// ParseJSONReport validates data against the ktlint JSON reporter schema and decodes it.
// An empty or whitespace-only file is an empty document.
func ParseJSONReport(data []byte, source string) (Document, error) {
	if source == "" {
		source = "-"
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Document{}, nil
	}

	schema, err := compiledReportSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to compile report schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, &ReportError{Path: source, Reason: "not valid JSON", Wrapped: err}
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return nil, &ReportError{Path: source, Reason: "does not match the ktlint JSON reporter schema", Details: details}
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ReportError{Path: source, Reason: "failed to decode", Wrapped: err}
	}
	return doc, nil
}

// ParseCheckstyleReport converts ktlint's checkstyle XML reporter output into a Document.
// The checkstyle `source` attribute carries the rule id.
func ParseCheckstyleReport(data []byte, source string) (Document, error) {
	if source == "" {
		source = "-"
	}
	xml := etree.NewDocument()
	if err := xml.ReadFromBytes(data); err != nil {
		return nil, &ReportError{Path: source, Reason: "XML is not well-formed", Wrapped: err}
	}
	root := xml.SelectElement("checkstyle")
	if root == nil {
		return nil, &ReportError{Path: source, Reason: "missing <checkstyle> root element"}
	}

	doc := Document{}
	for _, fileEl := range root.SelectElements("file") {
		name := strings.TrimSpace(fileEl.SelectAttrValue("name", ""))
		if name == "" {
			return nil, &ReportError{Path: source, Reason: "<file> element without a name attribute"}
		}
		report := FileReport{File: name, Errors: []RawError{}}
		for _, errEl := range fileEl.SelectElements("error") {
			line, err := strconv.Atoi(errEl.SelectAttrValue("line", "0"))
			if err != nil {
				return nil, &ReportError{Path: source, Reason: fmt.Sprintf("bad line number in %s", name), Wrapped: err}
			}
			column, err := strconv.Atoi(errEl.SelectAttrValue("column", "0"))
			if err != nil {
				return nil, &ReportError{Path: source, Reason: fmt.Sprintf("bad column number in %s", name), Wrapped: err}
			}
			report.Errors = append(report.Errors, RawError{
				Line:    line,
				Column:  column,
				Message: errEl.SelectAttrValue("message", ""),
				Rule:    errEl.SelectAttrValue("source", ""),
			})
		}
		doc = append(doc, report)
	}
	return doc, nil
}
