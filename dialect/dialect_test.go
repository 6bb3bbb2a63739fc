/*
 * Copyright (c) 2023.
 * all right reserved by gnodux<gnodux@gmail.com>
 */

package dialect

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderBy(t *testing.T) {
	assert.Equal(t, "", MySQL.OrderBy(nil))
	assert.Equal(t, "ORDER BY id DESC", MySQL.OrderBy([]Order{Desc("id")}))
	assert.Equal(t, "ORDER BY a ASC, b DESC, c ASC", Postgres.OrderBy([]Order{Asc("a"), Desc("b"), {Field: "c"}}))
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection(" desc ")
	require.NoError(t, err)
	assert.Equal(t, DESC, d)
	d, err = ParseDirection("Asc")
	require.NoError(t, err)
	assert.Equal(t, ASC, d)
	_, err = ParseDirection("sideways")
	assert.True(t, errors.Is(err, ErrInvalidDirection))
}

func TestPageRequestStart(t *testing.T) {
	assert.Equal(t, 10, Page(2, 10).Start())
	assert.Equal(t, 0, Page(1, 10).Start())
	assert.Equal(t, 7, Range(7, 10).Start())
	// page index wins over offset
	assert.Equal(t, 20, PageRequest{PageIndex: 3, Offset: 7, PageSize: 10}.Start())
	assert.Equal(t, 3, Range(20, 10).CurrentPage())
	assert.Equal(t, 2, Page(2, 10).CurrentPage())
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "?", MySQL.Placeholder(3))
	assert.Equal(t, "$3", Postgres.Placeholder(3))
	assert.Equal(t, "@p3", SQLServer.Placeholder(3))
	assert.Equal(t, ":3", Oracle.Placeholder(3))
	assert.Equal(t, "?", SQLite.Placeholder(3))
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	tests := []struct {
		product string
		want    *Dialect
	}{
		{"MySQL", MySQL},
		{"mysql", MySQL},
		{"PostgreSQL", Postgres},
		{"postgres", Postgres},
		{"pgx", Postgres},
		{"Oracle", Oracle},
		{"Microsoft SQL Server", SQLServer},
		{"MICROSOFT", SQLServer},
		{"sqlserver", SQLServer},
		{" SQLite ", SQLite},
		{"sqlite3", SQLite},
	}
	for _, tt := range tests {
		t.Run(tt.product, func(t *testing.T) {
			d, err := r.Lookup(tt.product)
			require.NoError(t, err)
			assert.Same(t, tt.want, d)
		})
	}

	_, err := r.Lookup("DB2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownDialect))
	var ue *UnknownDialectError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "DB2", ue.ProductName)
}

func TestRegistryWith(t *testing.T) {
	base := DefaultRegistry()
	ext := base.With(map[string]*Dialect{"TiDB": MySQL})
	d, err := ext.Lookup("tidb")
	require.NoError(t, err)
	assert.Same(t, MySQL, d)
	_, err = base.Lookup("tidb")
	assert.Error(t, err)
	assert.Contains(t, ext.Names(), "TIDB")
}

func TestNilRegistry(t *testing.T) {
	var r *Registry
	_, err := r.Lookup("mysql")
	assert.True(t, errors.Is(err, ErrUnknownDialect))
}
