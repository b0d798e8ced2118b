//go:build tools

package eventstore

import (
	_ "github.com/matryer/moq/pkg/moq"
)
