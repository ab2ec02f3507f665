package postservice

import (
	"fmt"
	"strings"
)

// Filter describes the search condition for list queries. A zero Filter
// matches every record.
type Filter struct {
	Search string
}

// likeEscaper escapes the LIKE pattern metacharacters so the search text is
// always matched as a literal substring. Without this a search for "100%"
// would match anything starting with "100", and a crafted pattern could get
// expensive to evaluate.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// condition renders the filter as a SQL condition on the aliased posts table
// starting at placeholder $arg. An empty filter renders as TRUE so callers
// can splice it into a WHERE clause unconditionally.
func (f Filter) condition(arg int) (string, []any) {
	if f.Search == "" {
		return "TRUE", nil
	}

	pattern := "%" + likeEscaper.Replace(f.Search) + "%"
	cond := fmt.Sprintf(`(p.title ILIKE $%d ESCAPE '\' OR p.content ILIKE $%d ESCAPE '\')`, arg, arg)

	return cond, []any{pattern}
}
