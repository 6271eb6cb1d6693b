/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package publish

import (
	"context"
	"fmt"
	"html"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// DefaultTextWidth caps the message column of the text table
const DefaultTextWidth = 100

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// plainText drops the HTML link markup used for review comments.
func plainText(s string) string {
	return html.UnescapeString(tagPattern.ReplaceAllString(s, ""))
}

// Text writes an aligned terminal table
type Text struct {
	W io.Writer
	// MessageWidth truncates messages; zero means DefaultTextWidth
	MessageWidth int
}

// Publish implements Publisher
func (t *Text) Publish(_ context.Context, res Result) error {
	_, err := io.WriteString(t.W, t.Render(res))
	return err
}

// Render returns the table without writing it.
func (t *Text) Render(res Result) string {
	width := t.MessageWidth
	if width <= 0 {
		width = DefaultTextWidth
	}

	var rows [][2]string
	if res.Report != nil {
		for _, v := range res.Report.Failures {
			loc := "-"
			msg := v.Message
			if v.Inline() {
				loc = v.File + ":" + strconv.Itoa(v.Line)
			} else if i := strings.Index(msg, ": "); i > 0 && strings.HasPrefix(msg, "<") {
				// "<link>: message" splits into location and message.
				loc, msg = plainText(msg[:i]), msg[i+2:]
			}
			rows = append(rows, [2]string{loc, runewidth.Truncate(plainText(msg), width, "…")})
		}
	}

	var sb strings.Builder
	if len(rows) == 0 {
		fmt.Fprintf(&sb, "ktlint: no issues in %d changed Kotlin file(s)\n", res.Summary.Targets)
		return sb.String()
	}

	locWidth := runewidth.StringWidth("LOCATION")
	for _, r := range rows {
		if w := runewidth.StringWidth(r[0]); w > locWidth {
			locWidth = w
		}
	}
	fmt.Fprintf(&sb, "%s  %s\n", runewidth.FillRight("LOCATION", locWidth), "MESSAGE")
	for _, r := range rows {
		fmt.Fprintf(&sb, "%s  %s\n", runewidth.FillRight(r[0], locWidth), r[1])
	}
	fmt.Fprintf(&sb, "\n%d ktlint issue(s) reported (%d found, %d filtered, %s mode)\n",
		len(rows), res.Summary.Issues, res.Summary.Filtered, res.Mode)
	return sb.String()
}
