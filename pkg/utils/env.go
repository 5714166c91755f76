package utils

import "os"

// Getenv returns the value of the environment variable named by key, or
// fallback when the variable is unset or empty.
func Getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
