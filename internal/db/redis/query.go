package redis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/vecscope/internal/domain/search/filter"
)

// matchAll is the FT query that matches every document in an index.
const matchAll = "*"

// buildQuery compiles free text and filter conditions into one FT query string.
// Clauses are space-joined (intersection); an empty query matches everything.
func buildQuery(text string, conds []filter.Condition) string {
	parts := make([]string, 0, len(conds)+1)
	if t := strings.TrimSpace(text); t != "" {
		parts = append(parts, "("+escapeQuery(t)+")")
	}
	for _, c := range conds {
		if clause := buildCondition(c); clause != "" {
			parts = append(parts, clause)
		}
	}
	if len(parts) == 0 {
		return matchAll
	}
	return strings.Join(parts, " ")
}

func buildCondition(cond filter.Condition) string {
	var clause string
	switch cond.Kind() {
	case filter.KindMatch:
		clause = buildTagFilter(cond.Key(), cond.Values()...)
	case filter.KindRange:
		clause = buildNumericFilter(cond.Key(), cond.Range())
	case filter.KindMissing:
		clause = fmt.Sprintf("ismissing(@%s)", cond.Key())
	default:
		return ""
	}
	if cond.Negated() {
		return "-" + clause
	}
	return clause
}

// buildTagFilter renders a tag clause; several values match any of them.
func buildTagFilter(key string, values ...string) string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = tagEscaper.Replace(v)
	}
	return fmt.Sprintf("@%s:{%s}", key, strings.Join(escaped, " | "))
}

// buildNumericFilter renders "@key:[lo hi]"; exclusive ends get a "(" prefix.
func buildNumericFilter(key string, r filter.Range) string {
	return fmt.Sprintf("@%s:[%s %s]", key, boundArg(r.Lower, "-inf"), boundArg(r.Upper, "+inf"))
}

func boundArg(b *filter.Bound, open string) string {
	if b == nil {
		return open
	}
	v := strconv.FormatFloat(b.Value, 'g', -1, 64)
	if b.Exclusive {
		return "(" + v
	}
	return v
}

var tagEscaper = strings.NewReplacer(
	`\`, `\\`,
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	" ", "\\ ",
)

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`:`, `\:`,
)
