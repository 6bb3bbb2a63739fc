/*
 * Copyright (c) 2023.
 * all right reserved by gnodux<gnodux@gmail.com>
 */

// Package drivers registers the database/sql drivers of every built-in dialect.
// Import it for side effects:
//
//	import _ "github.com/gnodux/sqlmark/drivers"
package drivers

import (
	"database/sql"
	"sort"

	_ "github.com/denisenkom/go-mssqldb"
	"github.com/gnodux/sqlmark/dialect"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/sijms/go-ora/v2"
	_ "modernc.org/sqlite"
)

// Names driver name -> dialect of the drivers registered by this package
var Names = map[string]*dialect.Dialect{
	"mysql":     dialect.MySQL,
	"postgres":  dialect.Postgres,
	"pgx":       dialect.Postgres,
	"sqlserver": dialect.SQLServer,
	"mssql":     dialect.SQLServer,
	"oracle":    dialect.Oracle,
	"sqlite":    dialect.SQLite,
}

// Dialect 根据驱动名称查找方言
func Dialect(driverName string) (*dialect.Dialect, error) {
	if d, ok := Names[driverName]; ok {
		return d, nil
	}
	return dialect.DefaultRegistry().Lookup(driverName)
}

// Registered driver names known to database/sql that have a dialect
func Registered() []string {
	var names []string
	for _, name := range sql.Drivers() {
		if _, err := Dialect(name); err == nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
