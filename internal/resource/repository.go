package resource

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coursedesk/coursedesk/internal/platform/db"
	"github.com/coursedesk/coursedesk/internal/shared"
)

// Repository is the storage collaborator of the engine. Every query is
// parameterized; column and table names come exclusively from descriptors.
type Repository interface {
	List(ctx context.Context, d *EntityDescriptor, q ListQuery) ([]Record, error)
	Get(ctx context.Context, d *EntityDescriptor, id int64) (Record, error)
	Owner(ctx context.Context, d *EntityDescriptor, id int64) (int64, error)
	Insert(ctx context.Context, d *EntityDescriptor, cols []string, vals []any) (int64, error)
	Update(ctx context.Context, d *EntityDescriptor, id int64, cols []string, vals []any) (bool, error)
	Delete(ctx context.Context, d *EntityDescriptor, id int64) (bool, error)
	Comments(ctx context.Context, d *EntityDescriptor, parentID int64) ([]Record, error)
	InsertComment(ctx context.Context, d *EntityDescriptor, parentID, authorID int64, body string) (int64, error)
	CommentAuthor(ctx context.Context, d *EntityDescriptor, commentID int64) (int64, error)
	DeleteComment(ctx context.Context, d *EntityDescriptor, commentID int64) error
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed repository shared by all
// entity kinds.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

// selectColumns builds the visible projection for an entity kind. The hash
// column of the students kind is Hidden and never appears here.
func selectColumns(d *EntityDescriptor, alias string) string {
	prefix := ""
	if alias != "" {
		prefix = alias + "."
	}
	cols := []string{prefix + "id"}
	for _, f := range d.Fields {
		if f.Hidden {
			continue
		}
		cols = append(cols, prefix+f.ColumnName())
	}
	if d.OwnerColumn != "" {
		cols = append(cols, prefix+d.OwnerColumn)
	}
	cols = append(cols, prefix+"created_at")
	return strings.Join(cols, ", ")
}

// listSQL assembles the list query; q must already be normalized against the
// descriptor allow-list by the engine.
func listSQL(d *EntityDescriptor, q ListQuery) (string, []any) {
	var (
		sb    strings.Builder
		args  []any
		conds []string
	)
	alias := ""
	if d.Author != nil {
		alias = "e"
	}
	sb.WriteString("SELECT ")
	sb.WriteString(selectColumns(d, alias))
	if d.Author != nil {
		sb.WriteString(", u.name AS author")
	}
	sb.WriteString(" FROM ")
	sb.WriteString(d.Table)
	if alias != "" {
		sb.WriteString(" " + alias)
	}
	if d.Author != nil {
		fmt.Fprintf(&sb, " JOIN %s u ON %s.%s = u.id", d.Author.Table, alias, d.Author.FK)
	}
	if d.Scope != "" {
		conds = append(conds, scoped(d.Scope, alias))
	}
	if q.Search != "" && len(d.SearchFields) > 0 {
		args = append(args, "%"+q.Search+"%")
		var likes []string
		for _, f := range d.SearchFields {
			likes = append(likes, fmt.Sprintf("%s ILIKE $%d", qualify(f, alias), len(args)))
		}
		conds = append(conds, "("+strings.Join(likes, " OR ")+")")
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	fmt.Fprintf(&sb, " ORDER BY %s %s", qualify(q.Sort, alias), q.Order)
	return sb.String(), args
}

func getSQL(d *EntityDescriptor) string {
	var sb strings.Builder
	alias := ""
	if d.Author != nil {
		alias = "e"
	}
	sb.WriteString("SELECT ")
	sb.WriteString(selectColumns(d, alias))
	if d.Author != nil {
		sb.WriteString(", u.name AS author")
	}
	sb.WriteString(" FROM ")
	sb.WriteString(d.Table)
	if alias != "" {
		sb.WriteString(" " + alias)
	}
	if d.Author != nil {
		fmt.Fprintf(&sb, " JOIN %s u ON %s.%s = u.id", d.Author.Table, alias, d.Author.FK)
	}
	sb.WriteString(" WHERE " + qualify("id", alias) + " = $1")
	if d.Scope != "" {
		sb.WriteString(" AND " + scoped(d.Scope, alias))
	}
	return sb.String()
}

func qualify(col, alias string) string {
	if alias == "" {
		return col
	}
	return alias + "." + col
}

func scoped(scope, alias string) string {
	if alias == "" {
		return scope
	}
	return alias + "." + scope
}

func (r *pgRepository) List(ctx context.Context, d *EntityDescriptor, q ListQuery) ([]Record, error) {
	sql, args := listSQL(d, q)
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

func (r *pgRepository) Get(ctx context.Context, d *EntityDescriptor, id int64) (Record, error) {
	rows, err := r.pool.Query(ctx, getSQL(d), id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	records, err := collectRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, shared.ErrNotFound
	}
	return records[0], nil
}

func (r *pgRepository) Owner(ctx context.Context, d *EntityDescriptor, id int64) (int64, error) {
	if d.OwnerColumn == "" {
		return 0, fmt.Errorf("resource %s: ownership not tracked", d.Kind)
	}
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", d.OwnerColumn, d.Table)
	if d.Scope != "" {
		sql += " AND " + d.Scope
	}
	var ownerID int64
	if err := r.pool.QueryRow(ctx, sql, id).Scan(&ownerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return ownerID, nil
}

func (r *pgRepository) Insert(ctx context.Context, d *EntityDescriptor, cols []string, vals []any) (int64, error) {
	placeholders := make([]string, len(vals))
	for i := range vals {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		d.Table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	var id int64
	if err := r.pool.QueryRow(ctx, sql, vals...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *pgRepository) Update(ctx context.Context, d *EntityDescriptor, id int64, cols []string, vals []any) (bool, error) {
	if len(cols) == 0 {
		return false, fmt.Errorf("resource %s: no columns to update", d.Kind)
	}
	sets := make([]string, len(cols))
	for i, col := range cols {
		sets[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}
	args := append(append([]any{}, vals...), id)
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", d.Table, strings.Join(sets, ", "), len(args))
	if d.Scope != "" {
		sql += " AND " + d.Scope
	}
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes the record and any attached comments inside one transaction;
// a failure rolls back both statements.
func (r *pgRepository) Delete(ctx context.Context, d *EntityDescriptor, id int64) (bool, error) {
	if d.Comments == nil {
		sql := fmt.Sprintf("DELETE FROM %s WHERE id = $1", d.Table)
		if d.Scope != "" {
			sql += " AND " + d.Scope
		}
		tag, err := r.pool.Exec(ctx, sql, id)
		if err != nil {
			return false, err
		}
		return tag.RowsAffected() > 0, nil
	}

	var found bool
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		commentSQL := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", d.Comments.Table, d.Comments.ParentColumn)
		if _, err := tx.Exec(ctx, commentSQL, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", d.Table), id)
		if err != nil {
			return err
		}
		found = tag.RowsAffected() > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

func (r *pgRepository) Comments(ctx context.Context, d *EntityDescriptor, parentID int64) ([]Record, error) {
	sql := fmt.Sprintf(`SELECT c.id, c.comment, c.user_id, c.created_at, u.name AS author
		FROM %s c JOIN users u ON c.user_id = u.id
		WHERE c.%s = $1 ORDER BY c.created_at ASC`, d.Comments.Table, d.Comments.ParentColumn)
	rows, err := r.pool.Query(ctx, sql, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

func (r *pgRepository) InsertComment(ctx context.Context, d *EntityDescriptor, parentID, authorID int64, body string) (int64, error) {
	sql := fmt.Sprintf("INSERT INTO %s (%s, user_id, comment) VALUES ($1, $2, $3) RETURNING id",
		d.Comments.Table, d.Comments.ParentColumn)
	var id int64
	if err := r.pool.QueryRow(ctx, sql, parentID, authorID, body).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *pgRepository) CommentAuthor(ctx context.Context, d *EntityDescriptor, commentID int64) (int64, error) {
	var authorID int64
	sql := fmt.Sprintf("SELECT user_id FROM %s WHERE id = $1", d.Comments.Table)
	if err := r.pool.QueryRow(ctx, sql, commentID).Scan(&authorID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return authorID, nil
}

func (r *pgRepository) DeleteComment(ctx context.Context, d *EntityDescriptor, commentID int64) error {
	sql := fmt.Sprintf("DELETE FROM %s WHERE id = $1", d.Comments.Table)
	_, err := r.pool.Exec(ctx, sql, commentID)
	return err
}

// collectRecords maps arbitrary rows into key-value records using the result
// set's own field descriptions.
func collectRecords(rows pgx.Rows) ([]Record, error) {
	fields := rows.FieldDescriptions()
	records := []Record{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		record := make(Record, len(fields))
		for i, fd := range fields {
			record[string(fd.Name)] = values[i]
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
