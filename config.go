/*
 * Copyright (c) 2023.
 * all right reserved by gnodux<gnodux@gmail.com>
 */

package sqlmark

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gnodux/sqlmark/dialect"
	"gopkg.in/yaml.v3"
)

// Config 管理器配置（YAML）
//
//	dialect: mysql
//	cacheLimit: 256
//	cacheTTL: 10m
//	templates:
//	  - dir: ./sql
//	    patterns: ["*.sql", "*/*.sql"]
//	primary: main
//	dataSources:
//	  main:
//	    driver: mysql
//	    dsn: user:pass@tcp(localhost)/app
type Config struct {
	Dialect     string                      `yaml:"dialect"`
	CacheLimit  *int                        `yaml:"cacheLimit"`
	CacheTTL    time.Duration               `yaml:"cacheTTL"`
	Templates   []TemplateDir               `yaml:"templates"`
	DataSources map[string]DataSourceConfig `yaml:"dataSources"`
	// Primary data source also registered as DefaultName
	Primary string `yaml:"primary"`
}

type TemplateDir struct {
	Dir      string   `yaml:"dir"`
	Patterns []string `yaml:"patterns"`
}

type DataSourceConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	// Dialect product name, defaults to the driver name
	Dialect string `yaml:"dialect"`
	MaxOpen int    `yaml:"maxOpen"`
	MaxIdle int    `yaml:"maxIdle"`
}

func LoadConfig(r io.Reader) (*Config, error) {
	cfg := &Config{}
	if err := yaml.NewDecoder(r).Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode config error: %w", err)
	}
	return cfg, nil
}

func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadConfig(f)
}

// NewManagerFromConfig 根据配置创建管理器。数据源延迟到第一次 Get 时打开。
func NewManagerFromConfig(name string, cfg *Config, opts ...ManagerOption) (*DBManager, error) {
	def := DefaultDialect
	if cfg.Dialect != "" {
		d, err := Dialects.Lookup(cfg.Dialect)
		if err != nil {
			return nil, err
		}
		def = d
	}
	limit := DefaultCacheLimit
	if cfg.CacheLimit != nil {
		limit = *cfg.CacheLimit
	}
	m := NewManagerWithDriver(name, def, append([]ManagerOption{WithCache(limit, cfg.CacheTTL)}, opts...)...)
	for _, t := range cfg.Templates {
		patterns := t.Patterns
		if len(patterns) == 0 {
			patterns = []string{"*.sql"}
		}
		m.SetTemplateFS(os.DirFS(t.Dir), patterns...)
	}
	if cfg.Primary != "" {
		if _, ok := cfg.DataSources[cfg.Primary]; !ok {
			return nil, fmt.Errorf("primary data source %s not found", cfg.Primary)
		}
	}
	for dsName, ds := range cfg.DataSources {
		conn, err := m.connFunc(ds)
		if err != nil {
			return nil, fmt.Errorf("data source %s: %w", dsName, err)
		}
		m.SetWithConnFunc(dsName, conn)
	}
	m.SetPrimary(cfg.Primary)
	return m, nil
}

func (m *DBManager) connFunc(ds DataSourceConfig) (ConnFunc, error) {
	if ds.Driver == "" {
		return nil, fmt.Errorf("%w: empty driver", ErrNilDriver)
	}
	product := ds.Dialect
	if product == "" {
		product = ds.Driver
	}
	d, err := m.dialects.Lookup(product)
	if err != nil {
		return nil, err
	}
	return func() (*DB, error) {
		db, err := m.open(ds.Driver, d, ds.DSN)
		if err != nil {
			return nil, err
		}
		if ds.MaxOpen > 0 {
			db.SetMaxOpenConns(ds.MaxOpen)
		}
		if ds.MaxIdle > 0 {
			db.SetMaxIdleConns(ds.MaxIdle)
		}
		return db, nil
	}, nil
}

// Registry returns the dialect registry used by Open
func (m *DBManager) Registry() *dialect.Registry {
	return m.dialects
}
