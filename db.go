/*
 * Copyright (c) 2023.
 * all right reserved by gnodux<gnodux@gmail.com>
 */

package sqlmark

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/cookieY/sqlx"
	"github.com/gnodux/sqlmark/dialect"
	"github.com/sirupsen/logrus"
)

// Statement 模板渲染、解析、绑定后的可执行语句
type Statement struct {
	ID string
	// SQL in the driver's placeholder style
	SQL    string
	Args   []any
	Parsed *ParameterizedSQL
}

// DB sqlx.DB with a dialect, a template set and a parse cache
type DB struct {
	*sqlx.DB
	m        *DBManager
	driver   *dialect.Dialect
	resolver *TextTemplateResolver
	cache    *ParsedCache
	log      logrus.FieldLogger
}

// NewDB wraps an opened sqlx.DB. Without a manager the DB keeps its own parse cache.
func NewDB(db *sqlx.DB, driver *dialect.Dialect) *DB {
	db.MapperFunc(NameFunc)
	return &DB{
		DB:       db,
		driver:   driver,
		resolver: NewTemplateResolver(driver),
		cache:    NewParsedCache(DefaultCacheLimit, 0),
	}
}

func (d *DB) SetManager(m *DBManager) {
	d.m = m
}

func (d *DB) Dialect() *dialect.Dialect {
	if d == nil {
		return nil
	}
	return d.driver
}

// SetLogger 设置日志，未设置时使用管理器的日志或 logrus 标准日志
func (d *DB) SetLogger(log logrus.FieldLogger) {
	d.log = log
}

func (d *DB) ParseTemplateFS(f fs.FS, patterns ...string) error {
	if d == nil {
		return ErrNilDB
	}
	return d.resolver.ParseTemplateFS(f, patterns...)
}

func (d *DB) ParseTemplate(name, text string) error {
	if d == nil {
		return ErrNilDB
	}
	return d.resolver.ParseTemplate(name, text)
}

// Reload re-reads every template source of this DB
func (d *DB) Reload() error {
	if d == nil {
		return ErrNilDB
	}
	return d.resolver.Reload()
}

func (d *DB) logger() logrus.FieldLogger {
	switch {
	case d.log != nil:
		return d.log
	case d.m != nil && d.m.log != nil:
		return d.m.log
	default:
		return logrus.StandardLogger()
	}
}

func (d *DB) parsedCache() *ParsedCache {
	if d.m != nil {
		return d.m.cache
	}
	return d.cache
}

// Prepare 渲染模板 id，解析参数标记并绑定参数。
// params 的第一个元素为 map 或结构体时作为命名参数（同时作为模板数据），其余为位置参数。
func (d *DB) Prepare(id string, params ...any) (*Statement, error) {
	if d == nil {
		return nil, ErrNilDB
	}
	return d.prepare(id, params, nil)
}

// prepare runs the whole pipeline; rewrite, when set, is applied to the '?' form of
// the statement before it is rendered in the driver's placeholder style.
func (d *DB) prepare(id string, params []any, rewrite func(string) (string, int, error)) (*Statement, error) {
	if d.driver == nil {
		return nil, ErrNilDriver
	}
	named, positional := splitParams(params)
	src, err := d.resolver.Resolve(id, named)
	if err != nil {
		return nil, err
	}
	parsed, err := d.parsedCache().Get(src)
	if err != nil {
		return nil, err
	}
	args, err := Bind(parsed, named, positional...)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", id, err)
	}
	query, shift := parsed.SQL, 0
	if rewrite != nil {
		if query, shift, err = rewrite(query); err != nil {
			return nil, err
		}
	}
	query, err = Rebind(query, d.driver, parsed.Parameters, shift)
	if err != nil {
		return nil, err
	}
	log := d.logger()
	log.WithFields(logrus.Fields{"id": src.ID, "sql": query}).Debug("sql rewritten")
	log.WithField("args", args).Trace("sql args")
	return &Statement{ID: src.ID, SQL: query, Args: args, Parsed: parsed}, nil
}

func (d *DB) SelectEx(dest any, id string, params ...any) error {
	return d.SelectExContext(context.Background(), dest, id, params...)
}

func (d *DB) SelectExContext(ctx context.Context, dest any, id string, params ...any) error {
	if d == nil {
		return ErrNilDB
	}
	return selectEx(ctx, d, d.DB, dest, id, params)
}

func (d *DB) GetEx(dest any, id string, params ...any) error {
	return d.GetExContext(context.Background(), dest, id, params...)
}

func (d *DB) GetExContext(ctx context.Context, dest any, id string, params ...any) error {
	if d == nil {
		return ErrNilDB
	}
	return getEx(ctx, d, d.DB, dest, id, params)
}

func (d *DB) ExecEx(id string, params ...any) (sql.Result, error) {
	return d.ExecExContext(context.Background(), id, params...)
}

func (d *DB) ExecExContext(ctx context.Context, id string, params ...any) (sql.Result, error) {
	if d == nil {
		return nil, ErrNilDB
	}
	return execEx(ctx, d, d.DB, id, params)
}

// Count 统计模板查询结果的总行数
func (d *DB) Count(ctx context.Context, id string, params ...any) (int64, error) {
	if d == nil {
		return 0, ErrNilDB
	}
	return count(ctx, d, d.DB, id, params)
}

// SelectPage 分页查询：先统计总数，总数大于起始行时再按方言包装分页SQL查询当前页。
// 返回总行数，dest 接收当前页数据。
func (d *DB) SelectPage(ctx context.Context, dest any, id string, req dialect.PageRequest, params ...any) (int64, error) {
	if d == nil {
		return 0, ErrNilDB
	}
	return selectPage(ctx, d, d.DB, dest, id, req, params)
}

// ExecBatch 在一个事务中对 batch 的每个元素执行模板 id，渲染结果相同的语句只 prepare 一次。
// 元素为 []any 时作为参数列表，否则作为单个参数。返回影响的总行数。
func (d *DB) ExecBatch(ctx context.Context, id string, batch []any) (int64, error) {
	if d == nil {
		return 0, ErrNilDB
	}
	var total int64
	err := d.Batch(ctx, nil, func(tx *Tx) error {
		stmts := map[string]*sqlx.Stmt{}
		defer func() {
			for _, s := range stmts {
				_ = s.Close()
			}
		}()
		for i, item := range batch {
			params, ok := item.([]any)
			if !ok {
				params = []any{item}
			}
			st, err := d.prepare(id, params, nil)
			if err != nil {
				return fmt.Errorf("batch item %d: %w", i, err)
			}
			ps, ok := stmts[st.SQL]
			if !ok {
				if ps, err = tx.PreparexContext(ctx, st.SQL); err != nil {
					return err
				}
				stmts[st.SQL] = ps
			}
			r, err := ps.ExecContext(ctx, st.Args...)
			if err != nil {
				return fmt.Errorf("batch item %d: %w", i, err)
			}
			if n, err := r.RowsAffected(); err == nil {
				total += n
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// Batch 在事务中执行 fn，fn 返回错误或 panic 时回滚
func (d *DB) Batch(ctx context.Context, opts *sql.TxOptions, fn func(tx *Tx) error) (err error) {
	if d == nil {
		return ErrNilDB
	}
	tx, err := d.BeginTxx(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				d.logger().WithError(rbErr).Warn("rollback failed")
			}
			return
		}
		err = tx.Commit()
	}()
	return fn(&Tx{Tx: tx, db: d, ctx: ctx})
}

func (d *DB) String() string {
	if d == nil {
		return "db[nil]"
	}
	return fmt.Sprintf("db[%s]", d.driver)
}

// Tx transaction with template support
type Tx struct {
	*sqlx.Tx
	db  *DB
	ctx context.Context
}

func (t *Tx) SelectEx(dest any, id string, params ...any) error {
	return selectEx(t.ctx, t.db, t.Tx, dest, id, params)
}

func (t *Tx) GetEx(dest any, id string, params ...any) error {
	return getEx(t.ctx, t.db, t.Tx, dest, id, params)
}

func (t *Tx) ExecEx(id string, params ...any) (sql.Result, error) {
	return execEx(t.ctx, t.db, t.Tx, id, params)
}

func (t *Tx) Count(id string, params ...any) (int64, error) {
	return count(t.ctx, t.db, t.Tx, id, params)
}

func (t *Tx) SelectPage(dest any, id string, req dialect.PageRequest, params ...any) (int64, error) {
	return selectPage(t.ctx, t.db, t.Tx, dest, id, req, params)
}

func selectEx(ctx context.Context, d *DB, q sqlx.QueryerContext, dest any, id string, params []any) error {
	st, err := d.prepare(id, params, nil)
	if err != nil {
		return err
	}
	return sqlx.SelectContext(ctx, q, dest, st.SQL, st.Args...)
}

func getEx(ctx context.Context, d *DB, q sqlx.QueryerContext, dest any, id string, params []any) error {
	st, err := d.prepare(id, params, nil)
	if err != nil {
		return err
	}
	return sqlx.GetContext(ctx, q, dest, st.SQL, st.Args...)
}

func execEx(ctx context.Context, d *DB, e sqlx.ExecerContext, id string, params []any) (sql.Result, error) {
	st, err := d.prepare(id, params, nil)
	if err != nil {
		return nil, err
	}
	return e.ExecContext(ctx, st.SQL, st.Args...)
}

func count(ctx context.Context, d *DB, q sqlx.QueryerContext, id string, params []any) (int64, error) {
	st, err := d.prepare(id, params, func(s string) (string, int, error) {
		c, at := dialect.CountSQLAt(s)
		return c, at, nil
	})
	if err != nil {
		return 0, err
	}
	var total int64
	if err = sqlx.GetContext(ctx, q, &total, st.SQL, st.Args...); err != nil {
		return 0, err
	}
	return total, nil
}

func selectPage(ctx context.Context, d *DB, q sqlx.QueryerContext, dest any, id string, req dialect.PageRequest, params []any) (int64, error) {
	if d.driver == nil {
		return 0, ErrNilDriver
	}
	if err := d.driver.CheckPage(req); err != nil {
		return 0, err
	}
	total, err := count(ctx, d, q, id, params)
	if err != nil {
		return 0, err
	}
	if total <= int64(req.Start()) {
		return total, nil
	}
	st, err := d.prepare(id, params, func(s string) (string, int, error) {
		return d.driver.PaginateAt(s, req)
	})
	if err != nil {
		return 0, err
	}
	if err = sqlx.SelectContext(ctx, q, dest, st.SQL, st.Args...); err != nil {
		return 0, err
	}
	return total, nil
}
