/*
 * Copyright (c) 2023.
 * all right reserved by gnodux<gnodux@gmail.com>
 */

package dialect

import (
	"fmt"

	"github.com/gnodux/sqlmark/utils"
)

var (
	//MySQL MySQL驱动
	MySQL = &Dialect{
		Name:        "mysql",
		Kind:        KindMySQL,
		DateFormat:  "'2006-01-02 15:04:05'",
		SQLNameFunc: MakeNameFunc("`", "`"),
		NameFunc:    utils.LowerCase,
		PlaceHolder: Question,
		// sql_mode 未启用 NO_BACKSLASH_ESCAPES
		BackslashEscapes: true,
	}

	//SQLServer SQLServer驱动
	SQLServer = &Dialect{
		Name:        "sqlserver",
		Kind:        KindSQLServer,
		PlaceHolder: AtP,
		DateFormat:  "'2006-01-02 15:04:05'",
		SQLNameFunc: MakeNameFunc("[", "]"),
		NameFunc:    utils.LowerCase,
	}
	// Postgres 驱动
	Postgres = &Dialect{
		Name:        "postgres",
		Kind:        KindPostgres,
		PlaceHolder: Dollar,
		DateFormat:  "'2006-01-02 15:04:05'",
		SQLNameFunc: MakeNameFunc("\"", "\""),
		NameFunc:    utils.LowerCase,
	}
	// Oracle go-ora 驱动
	Oracle = &Dialect{
		Name:        "oracle",
		Kind:        KindOracle,
		PlaceHolder: ColonNumber,
		DateFormat:  "TIMESTAMP '2006-01-02 15:04:05'",
		SQLNameFunc: MakeNameFunc("\"", "\""),
		NameFunc:    utils.LowerCase,
	}
	// SQLite modernc 驱动
	SQLite = &Dialect{
		Name:        "sqlite",
		Kind:        KindSQLite,
		PlaceHolder: Question,
		DateFormat:  "'2006-01-02 15:04:05'",
		SQLNameFunc: MakeNameFunc("\"", "\""),
		NameFunc:    utils.LowerCase,
		Keywords: map[string]string{
			"TRUE":  "1",
			"FALSE": "0",
		},
	}
)

func MakeNameFunc(prefix, suffix string) func(any) string {
	return func(name any) string {
		return QuotedName(name, prefix, suffix)
	}
}

func QuotedName(name any, prefix, suffix string) string {
	col := ""
	switch n := name.(type) {
	case string:
		col = prefix + n + suffix
	case fmt.Stringer:
		col = prefix + n.String() + suffix
	default:
		col = fmt.Sprintf("%s%v%s", prefix, n, suffix)
	}
	return col
}
