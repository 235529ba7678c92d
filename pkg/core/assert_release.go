//go:build !simdebug

package core

const debugAssertions = false
