package dialect

import "strings"

// QuoteIdent quotes a single identifier segment in the capability's style,
// escaping embedded quote characters.
//
//	ANSI:     weird"name -> "weird""name"
//	Backtick: weird`name -> `weird``name`
//	Bracket:  weird]name -> [weird]]name]
func (c Capability) QuoteIdent(id string) string {
	switch c.Quote {
	case QuoteBacktick:
		return "`" + strings.ReplaceAll(id, "`", "``") + "`"
	case QuoteBracket:
		return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
	default:
		return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
	}
}

// QuoteFQN quotes a possibly schema-qualified name segment by segment,
// ignoring empty segments: "public.events" -> "public"."events".
func (c Capability) QuoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, c.QuoteIdent(p))
	}
	return strings.Join(out, ".")
}

// QuoteList quotes each identifier and joins them with ", ".
func (c Capability) QuoteList(ids []string) string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = c.QuoteIdent(id)
	}
	return strings.Join(out, ", ")
}

// BaseName returns the last segment of a dotted name: "public.events" -> "events".
func BaseName(fqn string) string {
	fqn = strings.TrimSpace(fqn)
	if i := strings.LastIndexByte(fqn, '.'); i >= 0 {
		return strings.TrimSpace(fqn[i+1:])
	}
	return fqn
}

// Sibling returns a name in the same schema as fqn whose last segment is
// replaced by base: Sibling("public.events", "events_old") -> "public.events_old".
func Sibling(fqn, base string) string {
	fqn = strings.TrimSpace(fqn)
	if i := strings.LastIndexByte(fqn, '.'); i >= 0 {
		return fqn[:i+1] + base
	}
	return base
}
