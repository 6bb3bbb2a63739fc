/*
 * Copyright (c) 2023.
 * all right reserved by gnodux<gnodux@gmail.com>
 */

package sqlmark

import (
	"github.com/gnodux/sqlmark/dialect"
	"github.com/gnodux/sqlmark/utils"
)

var (
	DefaultDialect = dialect.MySQL
	MySQL          = dialect.MySQL
	SQLServer      = dialect.SQLServer
	Postgres       = dialect.Postgres
	Oracle         = dialect.Oracle
	SQLite         = dialect.SQLite
	//Dialects 数据库产品名称/驱动名称 -> 方言
	Dialects = dialect.DefaultRegistry()
	//NameFunc 结构体字段名 -> 列名/参数名
	NameFunc = utils.LowerCase
)
