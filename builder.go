/*
 * Copyright (c) 2023.
 * all right reserved by gnodux<gnodux@gmail.com>
 */

package sqlmark

import (
	"errors"
	"strings"

	"github.com/gnodux/sqlmark/utils"
)

// SQLSource SQL模板源：模板ID与模板文本
type SQLSource struct {
	ID  string
	SQL string
}

func NewSQLSource(id, sql string) SQLSource {
	return SQLSource{ID: id, SQL: sql}
}

// ParameterDescriptor describes one '?' of a rewritten statement.
type ParameterDescriptor struct {
	// Ordinal 1-based position among all placeholders of the rewritten SQL
	Ordinal int
	// Name empty for positional parameters
	Name string
	Kind SegmentKind
	// Offset byte offset of the '?' in the rewritten SQL
	Offset int
	// SourceStart/SourceEnd offsets of the marker in the original template text
	SourceStart int
	SourceEnd   int
}

func (p ParameterDescriptor) HasName() bool {
	return p.Name != ""
}

// ParameterizedSQL 参数化后的SQL，构建后不可修改
type ParameterizedSQL struct {
	Original   SQLSource
	SQL        string
	Parameters []ParameterDescriptor
}

func (ps *ParameterizedSQL) ID() string {
	return ps.Original.ID
}

// Len total number of placeholders
func (ps *ParameterizedSQL) Len() int {
	return len(ps.Parameters)
}

func (ps *ParameterizedSQL) NamedCount() int {
	n := 0
	for _, p := range ps.Parameters {
		if p.HasName() {
			n++
		}
	}
	return n
}

func (ps *ParameterizedSQL) PositionalCount() int {
	return len(ps.Parameters) - ps.NamedCount()
}

// Names distinct parameter names in order of first appearance
func (ps *ParameterizedSQL) Names() []string {
	seen := map[string]struct{}{}
	var names []string
	for _, p := range ps.Parameters {
		if !p.HasName() {
			continue
		}
		if _, ok := seen[p.Name]; ok {
			continue
		}
		seen[p.Name] = struct{}{}
		names = append(names, p.Name)
	}
	return names
}

func (ps *ParameterizedSQL) String() string {
	return ps.SQL
}

// Build 将扫描结果组装为可执行SQL：每个参数标记替换为一个 '?'，
// 同名参数每次出现都生成独立的序号。
func Build(segments []Segment) (string, []ParameterDescriptor) {
	sb := strings.Builder{}
	size := 0
	for _, s := range segments {
		size += len(s.Text)
	}
	sb.Grow(size)

	var params []ParameterDescriptor
	for _, s := range segments {
		if !s.IsParameter() {
			sb.WriteString(s.Text)
			continue
		}
		params = append(params, ParameterDescriptor{
			Ordinal:     len(params) + 1,
			Offset:      sb.Len(),
			Name:        s.Name,
			Kind:        s.Kind,
			SourceStart: s.Start,
			SourceEnd:   s.End,
		})
		sb.WriteByte('?')
	}
	return sb.String(), params
}

// Parse scans and rewrites src.
func Parse(src SQLSource) (*ParameterizedSQL, error) {
	segments, err := Scan(src.SQL)
	if err != nil {
		var me *MalformedTemplateError
		if errors.As(err, &me) {
			me.ID = src.ID
		}
		return nil, err
	}
	sql, params := Build(segments)
	return &ParameterizedSQL{
		Original:   src,
		SQL:        sql,
		Parameters: params,
	}, nil
}

// MustParse parse sql,panic if template is malformed
func MustParse(src SQLSource) *ParameterizedSQL {
	return utils.Must(Parse(src))
}
