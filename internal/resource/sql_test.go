package resource

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectColumnsSkipsHiddenFields(t *testing.T) {
	cols := selectColumns(accountsDescriptor(), "")
	require.Equal(t, "id, name, email, created_at", cols)

	cols = selectColumns(topicsDescriptor(), "e")
	require.Equal(t, "e.id, e.subject, e.body, e.user_id, e.created_at", cols)
}

func TestListSQLPlain(t *testing.T) {
	d := topicsDescriptor()
	sql, args := listSQL(d, ListQuery{Sort: "created_at", Order: "DESC"})
	require.Equal(t, "SELECT id, subject, body, user_id, created_at FROM topics ORDER BY created_at DESC", sql)
	require.Empty(t, args)
}

func TestListSQLWithAuthorJoin(t *testing.T) {
	d := topicsDescriptor()
	d.Author = &AuthorJoin{Table: "users", FK: "user_id"}

	sql, args := listSQL(d, ListQuery{Sort: "created_at", Order: "DESC"})
	require.Equal(t,
		"SELECT e.id, e.subject, e.body, e.user_id, e.created_at, u.name AS author"+
			" FROM topics e JOIN users u ON e.user_id = u.id"+
			" ORDER BY e.created_at DESC", sql)
	require.Empty(t, args)
}

func TestListSQLSearchAndScope(t *testing.T) {
	d := accountsDescriptor()
	d.Scope = "role = 'student'"
	d.SearchFields = []string{"name", "email"}

	sql, args := listSQL(d, ListQuery{Sort: "created_at", Order: "DESC", Search: "ada"})
	require.Equal(t,
		"SELECT id, name, email, created_at FROM accounts"+
			" WHERE role = 'student' AND (name ILIKE $1 OR email ILIKE $1)"+
			" ORDER BY created_at DESC", sql)
	require.Equal(t, []any{"%ada%"}, args)
}

func TestGetSQL(t *testing.T) {
	d := accountsDescriptor()
	d.Scope = "role = 'student'"
	require.Equal(t,
		"SELECT id, name, email, created_at FROM accounts WHERE id = $1 AND role = 'student'",
		getSQL(d))

	withAuthor := topicsDescriptor()
	withAuthor.Author = &AuthorJoin{Table: "users", FK: "user_id"}
	require.Equal(t,
		"SELECT e.id, e.subject, e.body, e.user_id, e.created_at, u.name AS author"+
			" FROM topics e JOIN users u ON e.user_id = u.id WHERE e.id = $1",
		getSQL(withAuthor))
}
