package filter

import "strings"

// Fragment OR-joins the predicates of one category inside a single pair of
// parentheses. No predicates yield an empty fragment.
func Fragment(preds []Predicate) string {
	if len(preds) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteByte('(')
	for i, p := range preds {
		if i > 0 {
			b.WriteString(" OR ")
		}
		b.WriteString(p.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Compose AND-joins the non-empty fragments in the given order. An empty
// result means no filter: every feature matches.
func Compose(fragments ...string) string {
	kept := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if f != "" {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " AND ")
}
