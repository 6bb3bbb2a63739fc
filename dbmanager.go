/*
 * Copyright (c) 2023.
 * all right reserved by gnodux<gnodux@gmail.com>
 */

package sqlmark

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/cookieY/sqlx"
	"github.com/gnodux/sqlmark/dialect"
	"github.com/gnodux/sqlmark/utils"
	"github.com/sirupsen/logrus"
)

var (
	DefaultName = "Default"
	//DefaultCacheLimit 解析缓存默认容量
	DefaultCacheLimit = 256
	//Manager default connection manager
	Manager = NewDBManager(DefaultName)
	//Get a db from
	Get = Manager.Get
	//MustGet a db,if db not exists,raise a panic
	MustGet = Manager.MustGet
	//Set a db
	Set = Manager.Set
	//SetWithConnFunc set a db with constructors func
	SetWithConnFunc = Manager.SetWithConnFunc
	//OpenWithConnFunc initialize a db
	OpenWithConnFunc = Manager.OpenWithConnFunc

	//Open a db
	Open = Manager.Open
	//MustOpen a db,if db not exists,raise a panic
	MustOpen = Manager.MustOpen

	//OpenDefault open a db with default name
	OpenDefault = Manager.OpenDefault
	//OpenWith open a db with driver and datasource
	OpenWith = Manager.OpenWith
	//SetTemplateFS set sql template from filesystem
	SetTemplateFS = Manager.SetTemplateFS

	SetDialect = Manager.SetDefaultDialect
	//ClearTemplateFS clear sql template from filesystem
	ClearTemplateFS = Manager.ClearTemplateFS

	//Reload templates of all opened db
	Reload = Manager.Reload

	//Shutdown manager and close all db
	Shutdown = Manager.Shutdown
)

type ConnFunc func() (*DB, error)

type DBManager struct {
	driver       *dialect.Dialect
	name         string
	dbs          map[string]*DB
	constructors map[string]ConnFunc
	lock         *sync.RWMutex
	tplLock      sync.RWMutex
	templateFS   []*TplFS
	cache        *ParsedCache
	dialects     *dialect.Registry
	log          logrus.FieldLogger
	primary      string
}

// ManagerOption 管理器选项
type ManagerOption func(m *DBManager)

// WithCache 设置解析缓存容量与过期时间，limit<=0 时不缓存
func WithCache(limit int, ttl time.Duration) ManagerOption {
	return func(m *DBManager) {
		m.cache = NewParsedCache(limit, ttl)
	}
}

func WithLogger(log logrus.FieldLogger) ManagerOption {
	return func(m *DBManager) {
		m.log = log
	}
}

// WithDialects 使用自定义的 产品名称->方言 注册表
func WithDialects(r *dialect.Registry) ManagerOption {
	return func(m *DBManager) {
		m.dialects = r
	}
}

func NewManagerWithDriver(name string, driver *dialect.Dialect, opts ...ManagerOption) *DBManager {
	f := &DBManager{
		name:         name,
		driver:       driver,
		dbs:          map[string]*DB{},
		constructors: map[string]ConnFunc{},
		lock:         &sync.RWMutex{},
		cache:        NewParsedCache(DefaultCacheLimit, 0),
		dialects:     Dialects,
		log:          logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func NewDBManager(name string, opts ...ManagerOption) *DBManager {
	return NewManagerWithDriver(name, DefaultDialect, opts...)
}

func (m *DBManager) SetTemplateFS(f fs.FS, patterns ...string) {
	m.tplLock.Lock()
	defer m.tplLock.Unlock()
	m.templateFS = append(m.templateFS, &TplFS{
		FS:       f,
		Patterns: patterns,
	})
}

func (m *DBManager) ClearTemplateFS() {
	m.tplLock.Lock()
	defer m.tplLock.Unlock()
	m.templateFS = nil
}

// Cache shared parse cache, nil when caching is disabled
func (m *DBManager) Cache() *ParsedCache {
	return m.cache
}

//Get 获取一个数据库连接
//name: 数据库连接名称

func (m *DBManager) Get(name string) (*DB, error) {
	m.lock.RLock()
	conn, ok := m.dbs[name]
	primary := m.primary
	m.lock.RUnlock()
	if ok {
		return conn, nil
	}
	conn, ok, err := m.construct(name)
	if ok {
		return conn, err
	}
	if name == DefaultName && primary != "" && primary != name {
		return m.Get(primary)
	}
	return nil, fmt.Errorf("database %s not found in %s", name, m.name)
}

// construct 使用延迟构造函数创建数据库，ok 为 false 表示没有对应的构造函数
func (m *DBManager) construct(name string) (*DB, bool, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if conn, ok := m.dbs[name]; ok {
		return conn, true, nil
	}
	loader, ok := m.constructors[name]
	if !ok {
		return nil, false, nil
	}
	//无论是否成功，都移除loader，避免反复初始化导致异常
	delete(m.constructors, name)
	conn, err := loader()
	if err != nil {
		return nil, true, fmt.Errorf("initialize database %s error:%w", name, err)
	}
	conn.SetManager(m)
	conn.MapperFunc(NameFunc)
	m.dbs[name] = conn
	return conn, true, nil
}

// SetPrimary Get(DefaultName) 未注册时返回 name 对应的数据库
func (m *DBManager) SetPrimary(name string) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.primary = name
}

// MustGet 获取一个数据库连接，如果不存在则panic
func (m *DBManager) MustGet(name string) *DB {
	return utils.Must(m.Get(name))
}

// OpenWithConnFunc  创建新的数据库连接并放入管理器中
func (m *DBManager) OpenWithConnFunc(name string, fn ConnFunc) (*DB, error) {
	d, err := fn()
	if err != nil {
		return nil, err
	}
	m.Set(name, d)
	return d, nil
}

// Open 打开一个数据库连接，driverName 同时用于查找方言（如 pgx -> postgres）
func (m *DBManager) Open(name, driverName, dsn string) (*DB, error) {
	if m.Exists(name) {
		return m.Get(name)
	}
	d, err := m.dialects.Lookup(driverName)
	if err != nil {
		return nil, err
	}
	db, err := m.open(driverName, d, dsn)
	if err != nil {
		return nil, err
	}
	m.Set(name, db)
	m.log.WithFields(logrus.Fields{"name": name, "driver": driverName, "dialect": d.Name}).Info("database opened")
	return db, nil
}

// MustOpen 打开一个数据库连接，如果失败则panic
func (m *DBManager) MustOpen(name, driverName, dsn string) *DB {
	return utils.Must(m.Open(name, driverName, dsn))
}

func (m *DBManager) OpenDefault(driverName, dsn string) (*DB, error) {
	return m.Open(DefaultName, driverName, dsn)
}

func (m *DBManager) Exists(name string) bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	_, ok := m.dbs[name]
	return ok
}

// Set a database
func (m *DBManager) Set(name string, db *DB) {
	m.lock.Lock()
	defer m.lock.Unlock()
	db.m = m
	m.dbs[name] = db
}

// SetWithConnFunc set a database constructor(Lazy create DB)
func (m *DBManager) SetWithConnFunc(name string, connFunc ConnFunc) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.constructors[name] = connFunc
}

// Reload 重新加载所有已打开数据库的模板并清空解析缓存。
// 单个数据库加载失败时保留其原有模板，返回合并后的错误。
func (m *DBManager) Reload() error {
	m.lock.RLock()
	defer m.lock.RUnlock()
	var errs []error
	for name, db := range m.dbs {
		if err := db.Reload(); err != nil {
			m.log.WithError(err).WithField("name", name).Warn("reload templates failed")
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	m.cache.Purge()
	return errors.Join(errs...)
}

func (m *DBManager) Shutdown() error {
	m.lock.Lock()
	defer m.lock.Unlock()
	for name, v := range m.dbs {
		if err := v.Close(); err != nil {
			return err
		}
		m.log.WithField("name", name).Info("database closed")
	}
	m.dbs = map[string]*DB{}
	m.cache.Purge()
	return nil
}

// SetDefaultDialect set default dialect
func (m *DBManager) SetDefaultDialect(driver *dialect.Dialect) {
	m.driver = driver
}

// OpenWith 使用方言名称作为驱动名称打开数据库（不放入管理器）
func (m *DBManager) OpenWith(curDialect *dialect.Dialect, datasource string) (*DB, error) {
	if curDialect == nil {
		curDialect = m.driver
	}
	if curDialect == nil {
		return nil, ErrNilDriver
	}
	return m.open(curDialect.Name, curDialect, datasource)
}

func (m *DBManager) open(driverName string, curDialect *dialect.Dialect, datasource string) (*DB, error) {
	db, err := sqlx.Open(driverName, datasource)
	if err != nil {
		return nil, err
	}
	newDb := NewDB(db, curDialect)
	newDb.m = m
	if err = m.parseTemplates(newDb); err != nil {
		_ = db.Close()
		return nil, err
	}
	return newDb, nil
}

// Wrap 将已有的 sqlx.DB 包装为 DB，加载管理器的模板（不放入管理器）
func (m *DBManager) Wrap(db *sqlx.DB, curDialect *dialect.Dialect) (*DB, error) {
	if curDialect == nil {
		curDialect = m.driver
	}
	if curDialect == nil {
		return nil, ErrNilDriver
	}
	newDb := NewDB(db, curDialect)
	newDb.m = m
	if err := m.parseTemplates(newDb); err != nil {
		return nil, err
	}
	return newDb, nil
}

// parseTemplates may run inside a ConnFunc, i.e. while m.lock is held
func (m *DBManager) parseTemplates(db *DB) error {
	m.tplLock.RLock()
	defer m.tplLock.RUnlock()
	for _, tfs := range m.templateFS {
		if err := db.ParseTemplateFS(tfs.FS, tfs.Patterns...); err != nil {
			return err
		}
	}
	return nil
}

func (m *DBManager) String() string {
	return fmt.Sprintf("db[%s]", m.name)
}
