//go:build tools

// Package tools pins the swagger generator so go mod tidy keeps it in go.mod.
package tools

import (
	_ "github.com/swaggo/swag"
)
