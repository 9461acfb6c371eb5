// Package env reads raw process environment variables. It sits below
// pkg/config so components that bootstrap before envconfig runs, like the
// logger, can still pick up GEARMART_* overrides.
package env

import "os"

// Get returns the variable's value, or fallback when it is unset or empty.
func Get(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
