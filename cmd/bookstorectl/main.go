// Package main provides bookstorectl, an operator tool for the bookstore
// database: creating admins, seeding a demo catalog and hashing passwords.
//
// Usage:
//
//	bookstorectl create-admin --email admin@example.com
//	bookstorectl seed --data-path ~/Bookstore/data
//	bookstorectl hash-password
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
