//go:build simdebug

package core

const debugAssertions = true
