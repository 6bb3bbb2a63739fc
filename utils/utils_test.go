/*
 * Copyright (c) 2023.
 * all right reserved by gnodux<gnodux@gmail.com>
 */

package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLowerCase(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"UserName", "user_name"},
		{"ID", "id"},
		{"TenantID", "tenant_id"},
		{"HTTPServer", "http_server"},
		{"name", "name"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LowerCase(tt.name))
		})
	}
}

func TestEscape(t *testing.T) {
	assert.Equal(t, "it''s", Escape("it's"))
	assert.Equal(t, `a\\b`, Escape(`a\b`))
	assert.Equal(t, "plain", Escape("plain"))
	assert.Equal(t, `a\b''c`, EscapeQuote(`a\b'c`))
}

func TestMust(t *testing.T) {
	assert.Equal(t, 1, Must(1, nil))
	assert.Panics(t, func() {
		Must(0, errors.New("boom"))
	})
}
