package feed

import (
	"fmt"
	"strings"
)

// The pipeline stages mirror the aggregation shape every feed query shares:
// match the target set, attach derived engagement columns, flatten the owner
// reference, sort, and cap the page. Stages may be composed in any order;
// Build always emits them in the canonical order
//
//	match -> derived joins -> owner join -> sort -> project -> limit
//
// so handler code cannot accidentally reorder execution (limiting before
// joining, say, which would compute counts per page position instead of per
// target).

type joinKind int

const (
	joinCountEdges joinKind = iota
	joinViewerHasEdge
	joinOwnerSummary
)

// JoinStage attaches one derived column (or the owner summary column set)
// to every row of the target set.
type JoinStage struct {
	kind       joinKind
	edgeTable  string
	edgeCol    string
	localCol   string
	subjectCol string
	subject    int64
	ownerCol   string
	as         string
}

// CountEdges derives a column holding the number of inbound edges of one
// predicate, e.g. CountEdges("likes", "video_id", "v.id", "likes_count").
func CountEdges(edgeTable, edgeCol, localCol, as string) JoinStage {
	return JoinStage{
		kind:      joinCountEdges,
		edgeTable: edgeTable,
		edgeCol:   edgeCol,
		localCol:  localCol,
		as:        as,
	}
}

// ViewerHasEdge derives a boolean column telling whether the viewer has an
// edge to the row, e.g. is_liked / is_subscribed.
func ViewerHasEdge(edgeTable, edgeCol, localCol, subjectCol string, viewerID int64, as string) JoinStage {
	return JoinStage{
		kind:       joinViewerHasEdge,
		edgeTable:  edgeTable,
		edgeCol:    edgeCol,
		localCol:   localCol,
		subjectCol: subjectCol,
		subject:    viewerID,
		as:         as,
	}
}

// ownerColumns is the allow-list of owner fields exposed to feed documents.
// Credential columns can never leak through here because the projection is
// built from this list, not by excluding known-sensitive columns.
var ownerColumns = []string{"id", "username", "full_name", "avatar_url"}

// OwnerSummary left-joins the owning user and projects the allow-listed
// summary columns. A dangling owner reference yields NULLs, not an error.
func OwnerSummary(ownerCol string) JoinStage {
	return JoinStage{kind: joinOwnerSummary, ownerCol: ownerCol}
}

type matchStage struct {
	expr string
	args []any
}

type searchStage struct {
	query  string
	fields []string
}

// Pipeline accumulates stages for one feed query.
type Pipeline struct {
	from       string
	createdCol string
	idCol      string

	matches    []matchStage
	search     *searchStage
	joins      []JoinStage
	sort       *Sort
	projection []string
	after      *Cursor
	limit      int
}

// NewPipeline starts a pipeline over the given FROM clause (table plus
// alias). createdCol and idCol name the default sort and tie-break columns.
func NewPipeline(from, createdCol, idCol string) *Pipeline {
	return &Pipeline{from: from, createdCol: createdCol, idCol: idCol}
}

// Match adds a filter predicate. Use ? for argument placeholders.
func (p *Pipeline) Match(expr string, args ...any) *Pipeline {
	p.matches = append(p.matches, matchStage{expr: expr, args: args})
	return p
}

// Search adds a fuzzy text-match stage over the given columns: trigram
// similarity with an edit-distance tolerance of two, ranked by similarity.
// It replaces the default ordering with relevance order.
func (p *Pipeline) Search(query string, fields ...string) *Pipeline {
	if query == "" || len(fields) == 0 {
		return p
	}
	p.search = &searchStage{query: query, fields: fields}
	return p
}

// Join appends a derived-column stage.
func (p *Pipeline) Join(stages ...JoinStage) *Pipeline {
	p.joins = append(p.joins, stages...)
	return p
}

// SortBy overrides the default ordering. The caller must have validated the
// field name against its sortable-column allow-list.
func (p *Pipeline) SortBy(s *Sort) *Pipeline {
	p.sort = s
	return p
}

// Project sets the base projection columns.
func (p *Pipeline) Project(cols ...string) *Pipeline {
	p.projection = cols
	return p
}

// After sets the continuation boundary. A timestamp cursor only applies
// under the default ordering and a rank cursor only under a search stage;
// a mismatched cursor is ignored rather than producing a wrong boundary.
func (p *Pipeline) After(c *Cursor) *Pipeline {
	p.after = c
	return p
}

// Limit caps the page size.
func (p *Pipeline) Limit(n int) *Pipeline {
	p.limit = n
	return p
}

// rankExpr is the relevance expression; it appears both in the projection
// and, for rank continuation, in the WHERE clause, because SQL cannot
// reference the select alias from a filter.
func (s *searchStage) rankExpr() (string, []any) {
	parts := make([]string, 0, len(s.fields))
	args := make([]any, 0, len(s.fields))
	for _, f := range s.fields {
		parts = append(parts, fmt.Sprintf("similarity(%s, ?)", f))
		args = append(args, s.query)
	}
	if len(parts) == 1 {
		return parts[0], args
	}
	return "GREATEST(" + strings.Join(parts, ", ") + ")", args
}

func (s *searchStage) matchExpr() (string, []any) {
	parts := make([]string, 0, len(s.fields)+1)
	args := make([]any, 0, len(s.fields)+1)
	for _, f := range s.fields {
		parts = append(parts, fmt.Sprintf("%s %% ?", f))
		args = append(args, s.query)
	}
	// Trigram matching alone misses short titles with typos; the bounded
	// levenshtein check keeps the documented two-edit tolerance.
	parts = append(parts, fmt.Sprintf("levenshtein_less_equal(lower(%s), lower(?), 2) <= 2", s.fields[0]))
	args = append(args, s.query)
	return "(" + strings.Join(parts, " OR ") + ")", args
}

// Build compiles the collected stages into a SQL statement with positional
// $n placeholders and its argument list.
func (p *Pipeline) Build() (string, []any) {
	var (
		selectCols []string
		where      []string
		args       []any
		ownerJoin  string
	)

	// bind rewrites ?-placeholders in a fragment into the next positional
	// parameters, keeping numbering consistent with emission order.
	bind := func(fragment string, fragmentArgs []any) string {
		for i := range fragmentArgs {
			fragment = strings.Replace(fragment, "?", fmt.Sprintf("$%d", len(args)+1), 1)
			args = append(args, fragmentArgs[i])
		}
		return fragment
	}

	selectCols = append(selectCols, p.projection...)

	// Match stages first: filtering bounds the join working set.
	if p.search != nil {
		expr, exprArgs := p.search.matchExpr()
		where = append(where, bind(expr, exprArgs))
	}
	for _, m := range p.matches {
		where = append(where, bind(m.expr, m.args))
	}

	// Continuation boundary.
	if p.after != nil {
		switch {
		case p.after.Kind == CursorRank && p.search != nil:
			expr, exprArgs := p.search.rankExpr()
			boundary := fmt.Sprintf("(%s < ? OR (%s = ? AND %s < ?))", expr, expr, p.idCol)
			boundaryArgs := append(append([]any{}, exprArgs...), p.after.Rank)
			boundaryArgs = append(boundaryArgs, exprArgs...)
			boundaryArgs = append(boundaryArgs, p.after.Rank, p.after.ID)
			where = append(where, bind(boundary, boundaryArgs))
		case p.after.Kind == CursorCreated && p.search == nil && p.sort == nil:
			op := "<"
			where = append(where, bind(p.createdCol+" "+op+" ?", []any{p.after.CreatedAt}))
		case p.after.Kind == CursorCreated && p.search == nil && p.sort != nil && p.sort.Field == p.createdCol:
			op := "<"
			if p.sort.Dir == SortAsc {
				op = ">"
			}
			where = append(where, bind(p.createdCol+" "+op+" ?", []any{p.after.CreatedAt}))
		}
	}

	// Derived-column joins.
	for _, j := range p.joins {
		switch j.kind {
		case joinCountEdges:
			selectCols = append(selectCols, fmt.Sprintf(
				"(SELECT COUNT(*) FROM %s e WHERE e.%s = %s) AS %s",
				j.edgeTable, j.edgeCol, j.localCol, j.as))
		case joinViewerHasEdge:
			selectCols = append(selectCols, bind(fmt.Sprintf(
				"EXISTS(SELECT 1 FROM %s e WHERE e.%s = %s AND e.%s = ?) AS %s",
				j.edgeTable, j.edgeCol, j.localCol, j.subjectCol, j.as), []any{j.subject}))
		case joinOwnerSummary:
			for _, col := range ownerColumns {
				selectCols = append(selectCols, "own."+col)
			}
			ownerJoin = fmt.Sprintf("LEFT JOIN users own ON own.id = %s", j.ownerCol)
		}
	}

	// Relevance rank travels with the row so the next page's cursor can be
	// derived from the last document.
	if p.search != nil {
		expr, exprArgs := p.search.rankExpr()
		selectCols = append(selectCols, bind(expr, exprArgs)+" AS search_rank")
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(selectCols, ", "))
	b.WriteString(" FROM ")
	b.WriteString(p.from)
	if ownerJoin != "" {
		b.WriteString(" ")
		b.WriteString(ownerJoin)
	}
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}

	b.WriteString(" ORDER BY ")
	switch {
	case p.search != nil:
		b.WriteString("search_rank DESC, " + p.idCol + " DESC")
	case p.sort != nil:
		dir := "DESC"
		if p.sort.Dir == SortAsc {
			dir = "ASC"
		}
		b.WriteString(p.sort.Field + " " + dir)
	default:
		b.WriteString(p.createdCol + " DESC, " + p.idCol + " DESC")
	}

	if p.limit > 0 {
		b.WriteString(bind(" LIMIT ?", []any{p.limit}))
	}

	return b.String(), args
}
