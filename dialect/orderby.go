/*
 * Copyright (c) 2023.
 * all right reserved by gnodux<gnodux@gmail.com>
 */

package dialect

import "strings"

// OuterAlias alias of the wrapped query in paging and count statements
const OuterAlias = "OUT_ALIAS"

// OrderBy renders "ORDER BY f1 d1, f2 d2". Field names are written verbatim; callers
// must only pass trusted identifiers. An empty sort renders ""; a missing direction is ASC.
func (d *Dialect) OrderBy(sort []Order) string {
	if len(sort) == 0 {
		return ""
	}
	sb := strings.Builder{}
	sb.WriteString(d.Keyword("ORDER BY"))
	pre := " "
	for _, o := range sort {
		sb.WriteString(pre)
		dir := o.Direction
		if dir == "" {
			dir = ASC
		}
		sb.WriteString(o.Field)
		sb.WriteByte(' ')
		sb.WriteString(d.Keyword(string(dir)))
		pre = ", "
	}
	return sb.String()
}
