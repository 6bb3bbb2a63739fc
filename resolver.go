/*
 * Copyright (c) 2023.
 * all right reserved by gnodux<gnodux@gmail.com>
 */

package sqlmark

import (
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"
	"text/template"

	"github.com/gnodux/sqlmark/dialect"
)

// TemplateResolver renders a template id into SQL text ready for Scan.
type TemplateResolver interface {
	Resolve(id string, data any) (SQLSource, error)
}

type TplFS struct {
	FS       fs.FS
	Patterns []string
}

// TextTemplateResolver 基于 text/template 的模板解析器。
// 模板以文件在 FS 中的路径命名（如 user/select_users.sql）；
// 同名的 "<方言名>/<路径>" 模板存在时优先使用。
type TextTemplateResolver struct {
	driver  *dialect.Dialect
	lock    sync.RWMutex
	tpl     *template.Template
	sources []*TplFS
}

func NewTemplateResolver(driver *dialect.Dialect) *TextTemplateResolver {
	return &TextTemplateResolver{
		driver: driver,
		tpl:    template.New("sql").Funcs(MakeFuncMap(driver)),
	}
}

// ParseTemplateFS 解析文件系统中匹配 patterns 的模板并记录来源，供 Reload 使用
func (r *TextTemplateResolver) ParseTemplateFS(f fs.FS, patterns ...string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if err := parseFS(r.tpl, f, patterns...); err != nil {
		return err
	}
	r.sources = append(r.sources, &TplFS{FS: f, Patterns: patterns})
	return nil
}

// ParseTemplate add a template from text
func (r *TextTemplateResolver) ParseTemplate(name, text string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	_, err := r.tpl.New(name).Parse(text)
	return err
}

// Reload rebuilds the template set from every recorded source. On error the
// previous set stays in place.
func (r *TextTemplateResolver) Reload() error {
	r.lock.Lock()
	defer r.lock.Unlock()
	tpl := template.New("sql").Funcs(MakeFuncMap(r.driver))
	for _, src := range r.sources {
		if err := parseFS(tpl, src.FS, src.Patterns...); err != nil {
			return err
		}
	}
	r.tpl = tpl
	return nil
}

func (r *TextTemplateResolver) Resolve(id string, data any) (SQLSource, error) {
	r.lock.RLock()
	tpl := r.lookup(id)
	r.lock.RUnlock()
	if tpl == nil {
		return SQLSource{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	sb := &strings.Builder{}
	if err := tpl.Execute(sb, data); err != nil {
		return SQLSource{}, fmt.Errorf("execute template %s error: %w", id, err)
	}
	return SQLSource{ID: tpl.Name(), SQL: sb.String()}, nil
}

// Templates names of all parsed templates
func (r *TextTemplateResolver) Templates() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()
	var names []string
	for _, t := range r.tpl.Templates() {
		if t.Tree != nil {
			names = append(names, t.Name())
		}
	}
	return names
}

func (r *TextTemplateResolver) lookup(id string) *template.Template {
	if r.driver != nil {
		if t := r.tpl.Lookup(path.Join(r.driver.Name, id)); t != nil && t.Tree != nil {
			return t
		}
	}
	if t := r.tpl.Lookup(id); t != nil && t.Tree != nil {
		return t
	}
	return nil
}

func parseFS(tpl *template.Template, f fs.FS, patterns ...string) error {
	for _, pattern := range patterns {
		files, err := fs.Glob(f, pattern)
		if err != nil {
			return err
		}
		for _, file := range files {
			content, err := fs.ReadFile(f, file)
			if err != nil {
				return err
			}
			if _, err = tpl.New(file).Parse(string(content)); err != nil {
				return fmt.Errorf("parse template %s error: %w", file, err)
			}
		}
	}
	return nil
}
