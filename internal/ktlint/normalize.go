/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package ktlint

// Normalize flattens report documents into issues, preserving document, file,
// then error order. The limit cutoff downstream depends on this order.
func Normalize(docs []Document) []Issue {
	total := 0
	for _, doc := range docs {
		for _, fr := range doc {
			total += len(fr.Errors)
		}
	}

	issues := make([]Issue, 0, total)
	for _, doc := range docs {
		for _, fr := range doc {
			for _, e := range fr.Errors {
				issues = append(issues, Issue{
					File:    fr.File,
					Line:    e.Line,
					Column:  e.Column,
					Message: e.Message,
					Rule:    e.Rule,
				})
			}
		}
	}
	return issues
}
