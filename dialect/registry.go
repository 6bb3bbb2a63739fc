/*
 * Copyright (c) 2023.
 * all right reserved by gnodux<gnodux@gmail.com>
 */

package dialect

import (
	"sort"
	"strings"
)

// Registry maps database product names to dialects. It is filled once by
// NewRegistry and only read afterwards, so lookups need no locking.
type Registry struct {
	dialects map[string]*Dialect
}

// NewRegistry 根据 产品名称->方言 映射创建注册表，名称不区分大小写
func NewRegistry(entries map[string]*Dialect) *Registry {
	r := &Registry{dialects: make(map[string]*Dialect, len(entries))}
	for name, d := range entries {
		if d == nil {
			continue
		}
		r.dialects[Normalize(name)] = d
	}
	return r
}

// DefaultRegistry knows the JDBC-style product names and the Go driver names of the
// five built-in dialects.
func DefaultRegistry() *Registry {
	return NewRegistry(map[string]*Dialect{
		"MySQL":                MySQL,
		"MariaDB":              MySQL,
		"PostgreSQL":           Postgres,
		"Postgres":             Postgres,
		"pgx":                  Postgres,
		"Oracle":               Oracle,
		"godror":               Oracle,
		"Microsoft SQL Server": SQLServer,
		"Microsoft":            SQLServer,
		"SQLServer":            SQLServer,
		"mssql":                SQLServer,
		"SQLite":               SQLite,
		"sqlite3":              SQLite,
	})
}

// Normalize upper-cases and trims a product name
func Normalize(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// Lookup 根据数据库产品名称查找方言，未注册时返回 *UnknownDialectError
func (r *Registry) Lookup(productName string) (*Dialect, error) {
	if r != nil {
		if d, ok := r.dialects[Normalize(productName)]; ok {
			return d, nil
		}
	}
	return nil, &UnknownDialectError{ProductName: productName}
}

// With returns a copy of r with extra entries; r itself is left untouched.
func (r *Registry) With(entries map[string]*Dialect) *Registry {
	merged := make(map[string]*Dialect, len(r.dialects)+len(entries))
	for k, v := range r.dialects {
		merged[k] = v
	}
	for k, v := range entries {
		merged[k] = v
	}
	return NewRegistry(merged)
}

// Names registered (normalized) product names, sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.dialects))
	for k := range r.dialects {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
