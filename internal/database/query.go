package database

import (
	"context"
	"fmt"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/varoOP/malmirror/internal/domain"
)

// Statement is a built SQL string together with its bound arguments
type Statement struct {
	SQL  string
	Args []any
}

// QueryTranslator turns QueryOptions into parameterized SELECT and COUNT
// statements. Identifiers are only emitted when the schema knows them and
// every user supplied value travels as a bound argument.
type QueryTranslator struct {
	schema   domain.SchemaIntrospector
	squirrel sq.StatementBuilderType
}

func NewQueryTranslator(schema domain.SchemaIntrospector) *QueryTranslator {
	return &QueryTranslator{
		schema:   schema,
		squirrel: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
}

type columnSet struct {
	known map[string]bool
	// searchable holds text columns whose name contains "title", in schema order
	searchable []string
}

func (t *QueryTranslator) resolve(ctx context.Context, table string) (columnSet, error) {
	columns, err := t.schema.Columns(ctx, table)
	if err != nil {
		return columnSet{}, errors.Wrapf(err, "error reading columns of %s", table)
	}

	set := columnSet{known: make(map[string]bool, len(columns))}
	for _, c := range columns {
		set.known[c.Name] = true
		if isTextType(c.Type) && strings.Contains(c.Name, "title") {
			set.searchable = append(set.searchable, c.Name)
		}
	}

	return set, nil
}

// predicate builds the shared WHERE clause for Select and Count. It returns
// nil when there is nothing to filter on.
func (t *QueryTranslator) predicate(cols columnSet, opts domain.QueryOptions) sq.Sqlizer {
	var and sq.And

	keys := make([]string, 0, len(opts.Filters))
	for k := range opts.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := opts.Filters[k]
		if !cols.known[k] || v == nil {
			continue
		}
		and = append(and, sq.Expr(quoteIdent(k)+" = ?", v))
	}

	if opts.Search != "" && len(cols.searchable) > 0 {
		pattern := "%" + opts.Search + "%"
		var or sq.Or
		for _, c := range cols.searchable {
			or = append(or, sq.Expr(quoteIdent(c)+" LIKE ?", pattern))
		}
		and = append(and, or)
	}

	if len(and) == 0 {
		return nil
	}

	return and
}

// Select builds the row selection statement for opts against table
func (t *QueryTranslator) Select(ctx context.Context, table string, opts domain.QueryOptions) (Statement, error) {
	cols, err := t.resolve(ctx, table)
	if err != nil {
		return Statement{}, err
	}

	queryBuilder := t.squirrel.Select("*").From(quoteIdent(table))

	if pred := t.predicate(cols, opts); pred != nil {
		queryBuilder = queryBuilder.Where(pred)
	}

	if opts.OrderBy != "" && cols.known[opts.OrderBy] {
		queryBuilder = queryBuilder.OrderBy(fmt.Sprintf("%s %s", quoteIdent(opts.OrderBy), opts.OrderDirection.Normalize()))
	}

	if opts.Limit != nil && *opts.Limit >= 0 {
		limit := *opts.Limit
		queryBuilder = queryBuilder.Suffix("LIMIT ?", limit)
		if opts.Page != nil && *opts.Page >= 1 {
			queryBuilder = queryBuilder.Suffix("OFFSET ?", (*opts.Page-1)*limit)
		}
	}

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return Statement{}, errors.Wrap(err, "error building query")
	}

	return Statement{SQL: query, Args: args}, nil
}

// Count builds the counting statement for opts against table. It shares the
// predicate with Select and ignores ordering and pagination.
func (t *QueryTranslator) Count(ctx context.Context, table string, opts domain.QueryOptions) (Statement, error) {
	cols, err := t.resolve(ctx, table)
	if err != nil {
		return Statement{}, err
	}

	queryBuilder := t.squirrel.Select("COUNT(*)").From(quoteIdent(table))

	if pred := t.predicate(cols, opts); pred != nil {
		queryBuilder = queryBuilder.Where(pred)
	}

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return Statement{}, errors.Wrap(err, "error building query")
	}

	return Statement{SQL: query, Args: args}, nil
}
