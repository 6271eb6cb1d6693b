/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package publish

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/aymerick/raymond"
)

const markdownTemplate = `{{#if empty}}:white_check_mark: ktlint found no issues in {{targets}} changed Kotlin file(s).
{{else}}{{#if general}}<table>
  <thead>
    <tr>
      <th width="50"></th>
      <th width="100%">{{generalCount}} ktlint {{plural generalCount "issue" "issues"}}</th>
    </tr>
  </thead>
  <tbody>
{{#each general}}    <tr>
      <td>:no_entry_sign:</td>
      <td>{{{message}}}</td>
    </tr>
{{/each}}  </tbody>
</table>
{{/if}}{{#if inline}}
#### Inline ({{inlineCount}})

{{#each inline}}- ` + "`{{file}}:{{line}}`" + ` {{message}}
{{/each}}{{/if}}{{/if}}`

var (
	markdownOnce sync.Once
	markdownTpl  *raymond.Template
	markdownErr  error
)

func markdownTemplateParsed() (*raymond.Template, error) {
	markdownOnce.Do(func() {
		markdownTpl, markdownErr = raymond.Parse(markdownTemplate)
		if markdownErr != nil {
			return
		}
		markdownTpl.RegisterHelper("plural", func(n int, one, many string) string {
			if n == 1 {
				return one
			}
			return many
		})
	})
	return markdownTpl, markdownErr
}

// RenderMarkdown renders a report as a Danger-style markdown table.
func RenderMarkdown(res Result) (string, error) {
	tpl, err := markdownTemplateParsed()
	if err != nil {
		return "", fmt.Errorf("failed to parse markdown template: %w", err)
	}

	general := make([]map[string]interface{}, 0)
	inline := make([]map[string]interface{}, 0)
	if res.Report != nil {
		for _, v := range res.Report.General() {
			general = append(general, map[string]interface{}{"message": v.Message})
		}
		for _, v := range res.Report.InlineFailures() {
			inline = append(inline, map[string]interface{}{"file": v.File, "line": v.Line, "message": v.Message})
		}
	}

	ctx := map[string]interface{}{
		"empty":        len(general) == 0 && len(inline) == 0,
		"targets":      res.Summary.Targets,
		"general":      general,
		"generalCount": len(general),
		"inline":       inline,
		"inlineCount":  len(inline),
	}
	out, err := tpl.Exec(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}

// Markdown writes the rendered markdown report
type Markdown struct {
	W io.Writer
}

// Publish implements Publisher
func (m *Markdown) Publish(_ context.Context, res Result) error {
	out, err := RenderMarkdown(res)
	if err != nil {
		return err
	}
	_, err = io.WriteString(m.W, out)
	return err
}
