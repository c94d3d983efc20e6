package neo4j

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pennsieve/cypherqa/types"
)

var (
	// write clauses; a preceding '.', ':' or '$' marks an identifier instead
	writeClause = regexp.MustCompile(`(?i)(^|[^.:$\w])(CREATE|MERGE|DELETE|DETACH|SET|REMOVE|DROP|FOREACH|LOAD\s+CSV)\b`)

	// procedures that write or administer the database
	writeProcedure = regexp.MustCompile(`(?i)\bCALL\s+(apoc\.(create|merge|refactor|periodic|nodes\.delete|trigger)|db\.(create|index\.fulltext\.create|clearQueryCaches)|dbms\.|gds\.[\w.]*\.write)`)

	lineComment  = regexp.MustCompile(`//[^\n]*`)
	blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

// CheckReadOnly rejects statements that could modify the graph.
// String literals, quoted identifiers and comments are ignored.
func CheckReadOnly(query string) error {
	stripped := stripLiterals(query)
	stripped = blockComment.ReplaceAllString(stripped, " ")
	stripped = lineComment.ReplaceAllString(stripped, " ")

	if m := writeClause.FindStringSubmatch(stripped); m != nil {
		return fmt.Errorf("%w: found %s", types.ErrWriteQuery, strings.ToUpper(strings.Join(strings.Fields(m[2]), " ")))
	}

	if m := writeProcedure.FindString(stripped); m != "" {
		return fmt.Errorf("%w: found %s", types.ErrWriteQuery, strings.TrimSpace(m))
	}

	return nil
}

// stripLiterals blanks out '...', "..." and `...` sections, honoring backslash escapes
func stripLiterals(query string) string {
	var b strings.Builder
	b.Grow(len(query))

	var quote rune
	escaped := false
	for _, r := range query {
		if quote == 0 {
			if r == '\'' || r == '"' || r == '`' {
				quote = r
				b.WriteRune(' ')
				continue
			}
			b.WriteRune(r)
			continue
		}

		switch {
		case escaped:
			escaped = false
		case r == '\\' && quote != '`':
			escaped = true
		case r == quote:
			quote = 0
		}
		b.WriteRune(' ')
	}
	return b.String()
}
