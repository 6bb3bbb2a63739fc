/*
 * Copyright (c) 2023.
 * all right reserved by gnodux<gnodux@gmail.com>
 */

package dialect

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginate(t *testing.T) {
	type args struct {
		d   *Dialect
		sql string
		req PageRequest
	}
	tests := []struct {
		name string
		args args
		want string
	}{
		{
			name: "mysql page with sort",
			args: args{MySQL, "SELECT * FROM t", Page(2, 10, Desc("id"))},
			want: "SELECT * FROM (SELECT * FROM t) AS OUT_ALIAS ORDER BY id DESC LIMIT 10, 10",
		},
		{
			name: "mysql first page without sort",
			args: args{MySQL, "SELECT * FROM t", Page(1, 20)},
			want: "SELECT * FROM (SELECT * FROM t) AS OUT_ALIAS LIMIT 0, 20",
		},
		{
			name: "postgres offset",
			args: args{Postgres, "SELECT * FROM t WHERE a = ?", Range(15, 5, Asc("name"), Desc("id"))},
			want: "SELECT * FROM (SELECT * FROM t WHERE a = ?) AS OUT_ALIAS ORDER BY name ASC, id DESC LIMIT 5 OFFSET 15",
		},
		{
			name: "sqlite same as postgres",
			args: args{SQLite, "SELECT * FROM t", Page(3, 10)},
			want: "SELECT * FROM (SELECT * FROM t) AS OUT_ALIAS LIMIT 10 OFFSET 20",
		},
		{
			name: "sqlserver",
			args: args{SQLServer, "SELECT * FROM t", Page(2, 10, Asc("id"))},
			want: "SELECT * FROM (SELECT * FROM t) AS OUT_ALIAS ORDER BY id ASC OFFSET 10 ROWS FETCH NEXT 10 ROWS ONLY",
		},
		{
			name: "oracle offset",
			args: args{Oracle, "SELECT * FROM t", Range(20, 10)},
			want: "SELECT * FROM (SELECT O.*, ROWNUM RN FROM (SELECT * FROM (SELECT * FROM t) OUT_ALIAS) O WHERE ROWNUM <= 30) WHERE RN > 20",
		},
		{
			name: "oracle with sort",
			args: args{Oracle, "SELECT * FROM t", Page(1, 5, Desc("created"))},
			want: "SELECT * FROM (SELECT O.*, ROWNUM RN FROM (SELECT * FROM (SELECT * FROM t) OUT_ALIAS ORDER BY created DESC) O WHERE ROWNUM <= 5) WHERE RN > 0",
		},
		{
			name: "trailing order by relocated",
			args: args{MySQL, "SELECT * FROM t ORDER BY name", Page(1, 10, Desc("id"))},
			want: "SELECT * FROM (SELECT * FROM t) AS OUT_ALIAS ORDER BY id DESC LIMIT 0, 10",
		},
		{
			name: "inner order by kept without sort",
			args: args{MySQL, "SELECT * FROM t ORDER BY name", Page(1, 10)},
			want: "SELECT * FROM (SELECT * FROM t ORDER BY name) AS OUT_ALIAS LIMIT 0, 10",
		},
		{
			name: "order by with placeholder is kept",
			args: args{MySQL, "SELECT * FROM t ORDER BY FIELD(id, ?)", Page(1, 10, Desc("id"))},
			want: "SELECT * FROM (SELECT * FROM t ORDER BY FIELD(id, ?)) AS OUT_ALIAS ORDER BY id DESC LIMIT 0, 10",
		},
		{
			name: "trailing semicolon trimmed",
			args: args{Postgres, "SELECT * FROM t;\n", Page(1, 10)},
			want: "SELECT * FROM (SELECT * FROM t) AS OUT_ALIAS LIMIT 10 OFFSET 0",
		},
		{
			name: "dangling line comment",
			args: args{Postgres, "SELECT * FROM t -- all rows", Page(1, 10)},
			want: "SELECT * FROM (SELECT * FROM t -- all rows\n) AS OUT_ALIAS LIMIT 10 OFFSET 0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.args.d.Paginate(tt.args.sql, tt.args.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPaginateKeepsPlaceholders(t *testing.T) {
	sql := "SELECT * FROM t WHERE a = ? AND b ?| ? AND c = '?'"
	for _, d := range []*Dialect{MySQL, Postgres, Oracle, SQLServer, SQLite} {
		t.Run(d.Name, func(t *testing.T) {
			got, err := d.Paginate(sql, Page(4, 25, Asc("a")))
			require.NoError(t, err)
			assert.Equal(t, strings.Count(sql, "?"), strings.Count(got, "?"))
			assert.Contains(t, got, sql)
		})
	}
}

func TestPaginateInvalidRequest(t *testing.T) {
	tests := []struct {
		name string
		req  PageRequest
	}{
		{"zero size", Page(1, 0)},
		{"negative offset", Range(-1, 10)},
		{"negative index", Page(-2, 10)},
		{"empty field", Page(1, 10, Order{Direction: ASC})},
		{"bad direction", Page(1, 10, Order{Field: "id", Direction: "UP"})},
		{"page overflow", Page(math.MaxInt/10+2, 10)},
		{"offset overflow", Range(math.MaxInt-5, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MySQL.Paginate("SELECT 1", tt.req)
			assert.ErrorIs(t, err, ErrInvalidPageRequest)
		})
	}
}

func TestPaginateUnknownKind(t *testing.T) {
	d := &Dialect{Name: "db2"}
	_, err := d.Paginate("SELECT 1", Page(1, 10))
	assert.True(t, errors.Is(err, ErrUnknownDialect))
}

func TestCountSQL(t *testing.T) {
	tests := []struct {
		sql  string
		want string
	}{
		{"SELECT * FROM t", "SELECT COUNT(1) FROM (SELECT * FROM t) OUT_ALIAS"},
		{"SELECT * FROM t order  by id desc", "SELECT COUNT(1) FROM (SELECT * FROM t) OUT_ALIAS"},
		{"SELECT * FROM t ORDER BY id LIMIT 5", "SELECT COUNT(1) FROM (SELECT * FROM t ORDER BY id LIMIT 5) OUT_ALIAS"},
		{"SELECT ROW_NUMBER() OVER (ORDER BY id) FROM t", "SELECT COUNT(1) FROM (SELECT ROW_NUMBER() OVER (ORDER BY id) FROM t) OUT_ALIAS"},
		{"SELECT 'ORDER BY x' FROM t", "SELECT COUNT(1) FROM (SELECT 'ORDER BY x' FROM t) OUT_ALIAS"},
		{"SELECT border, by_name FROM t", "SELECT COUNT(1) FROM (SELECT border, by_name FROM t) OUT_ALIAS"},
	}
	for _, tt := range tests {
		t.Run(tt.sql, func(t *testing.T) {
			assert.Equal(t, tt.want, CountSQL(tt.sql))
		})
	}
}

func TestPaginateAt(t *testing.T) {
	sql := "SELECT * FROM t WHERE a = ? ORDER BY b;"
	for _, d := range []*Dialect{MySQL, Postgres, Oracle, SQLServer, SQLite} {
		t.Run(d.Name, func(t *testing.T) {
			got, at, err := d.PaginateAt(sql, Page(3, 10, Desc("b")))
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(got[at:], "SELECT * FROM t WHERE a = ?)"), got[at:])
		})
	}
	got, at := CountSQLAt(sql)
	assert.Equal(t, "SELECT * FROM t WHERE a = ?) OUT_ALIAS", got[at:])
}

func TestCheckPage(t *testing.T) {
	assert.NoError(t, MySQL.CheckPage(Page(1, 10)))
	assert.NoError(t, SQLServer.CheckPage(Page(1, 10, Asc("id"))))
	assert.ErrorIs(t, SQLServer.CheckPage(Page(1, 10)), ErrInvalidPageRequest)
	assert.ErrorIs(t, Postgres.CheckPage(Page(1, 0)), ErrInvalidPageRequest)
}

func TestLargeBounds(t *testing.T) {
	req := Range(math.MaxInt-10, 10)
	require.NoError(t, req.Validate())
	got, err := Oracle.Paginate("SELECT 1 FROM dual", req)
	require.NoError(t, err)
	assert.NotContains(t, got, "-")
}
