package database

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/malmirror/internal/domain"
)

const animeTable = "anime"

// AnimeRepo implements domain.AnimeRepository on sqlite
type AnimeRepo struct {
	log        zerolog.Logger
	db         *DB
	translator *QueryTranslator
}

// NewAnimeRepo creates a new anime repository
func NewAnimeRepo(log zerolog.Logger, db *DB) *AnimeRepo {
	return &AnimeRepo{
		log:        log.With().Str("repo", "anime").Logger(),
		db:         db,
		translator: NewQueryTranslator(NewSchemaIntrospector(log, db)),
	}
}

var _ domain.AnimeRepository = (*AnimeRepo)(nil)

// FindByID returns the anime with malID or domain.ErrRecordNotFound
func (r *AnimeRepo) FindByID(ctx context.Context, malID int) (*domain.Anime, error) {
	queryBuilder := r.db.squirrel.
		Select("*").
		From(quoteIdent(animeTable)).
		Where(sq.Eq{keyColumn: malID}).
		Limit(1)

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("FindByID")

	anime, err := r.query(ctx, query, args)
	if err != nil {
		return nil, err
	}

	if len(anime) == 0 {
		return nil, domain.ErrRecordNotFound
	}

	return &anime[0], nil
}

// FindAll returns every stored anime ordered by id
func (r *AnimeRepo) FindAll(ctx context.Context) ([]domain.Anime, error) {
	queryBuilder := r.db.squirrel.
		Select("*").
		From(quoteIdent(animeTable)).
		OrderBy(keyColumn)

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("FindAll")

	return r.query(ctx, query, args)
}

// FindByQuery returns the anime matching opts
func (r *AnimeRepo) FindByQuery(ctx context.Context, opts domain.QueryOptions) ([]domain.Anime, error) {
	stmt, err := r.translator.Select(ctx, animeTable, opts)
	if err != nil {
		return nil, err
	}

	r.log.Trace().Str("query", stmt.SQL).Interface("args", stmt.Args).Msg("FindByQuery")

	return r.query(ctx, stmt.SQL, stmt.Args)
}

// CountByQuery counts the anime matching the filters and search of opts
func (r *AnimeRepo) CountByQuery(ctx context.Context, opts domain.QueryOptions) (int, error) {
	stmt, err := r.translator.Count(ctx, animeTable, opts)
	if err != nil {
		return 0, err
	}

	r.log.Trace().Str("query", stmt.SQL).Interface("args", stmt.Args).Msg("CountByQuery")

	return r.count(ctx, stmt.SQL, stmt.Args)
}

// CountAll counts every stored anime
func (r *AnimeRepo) CountAll(ctx context.Context) (int, error) {
	query, args, err := r.db.squirrel.Select("COUNT(*)").From(quoteIdent(animeTable)).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("CountAll")

	return r.count(ctx, query, args)
}

// Create inserts anime with an explicit column list and returns it unchanged.
// Writing an id that already exists replaces the row.
func (r *AnimeRepo) Create(ctx context.Context, anime *domain.Anime) (*domain.Anime, error) {
	if anime == nil || anime.MalID <= 0 {
		return nil, errors.Wrap(domain.ErrInvalidEntity, "anime requires a positive mal_id")
	}

	names, values, err := writeValues(anime)
	if err != nil {
		return nil, err
	}

	queryBuilder := r.db.squirrel.
		Replace(animeTable).
		Columns(names...).
		Values(values...)

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("Create")

	if _, err := r.db.handler.ExecContext(ctx, query, args...); err != nil {
		return nil, errors.Wrap(err, "error executing query")
	}

	return anime, nil
}

// Update overwrites every non-key column of the row with malID. It returns
// domain.ErrRecordNotFound when no row matched, otherwise the re-read row.
func (r *AnimeRepo) Update(ctx context.Context, malID int, anime *domain.Anime) (*domain.Anime, error) {
	if anime == nil || malID <= 0 {
		return nil, errors.Wrap(domain.ErrInvalidEntity, "update requires an anime and a positive mal_id")
	}

	names, values, err := writeValues(anime)
	if err != nil {
		return nil, err
	}

	queryBuilder := r.db.squirrel.Update(animeTable)
	for i, name := range names {
		if name == keyColumn {
			continue
		}
		queryBuilder = queryBuilder.Set(name, values[i])
	}
	queryBuilder = queryBuilder.Where(sq.Eq{keyColumn: malID})

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("Update")

	res, err := r.db.handler.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "error executing query")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, errors.Wrap(err, "error reading affected rows")
	}

	if affected == 0 {
		return nil, domain.ErrRecordNotFound
	}

	return r.FindByID(ctx, malID)
}

// Delete removes the row with malID and reports whether one was removed
func (r *AnimeRepo) Delete(ctx context.Context, malID int) (bool, error) {
	queryBuilder := r.db.squirrel.
		Delete(animeTable).
		Where(sq.Eq{keyColumn: malID})

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return false, errors.Wrap(err, "error building delete query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("Delete")

	res, err := r.db.handler.ExecContext(ctx, query, args...)
	if err != nil {
		return false, errors.Wrap(err, "error executing delete query")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "error reading affected rows")
	}

	return affected > 0, nil
}

func (r *AnimeRepo) query(ctx context.Context, query string, args []any) ([]domain.Anime, error) {
	rows, err := r.db.handler.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "error executing query")
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "error reading columns")
	}

	anime := []domain.Anime{}
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, errors.Wrap(err, "error scanning row")
		}

		row := make(Row, len(columns))
		for i, c := range columns {
			row[c] = values[i]
		}
		anime = append(anime, *RowToAnime(row))
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating rows")
	}

	return anime, nil
}

func (r *AnimeRepo) count(ctx context.Context, query string, args []any) (int, error) {
	var n int
	if err := r.db.handler.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "error executing query")
	}
	return n, nil
}
