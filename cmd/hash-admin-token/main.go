// Command hash-admin-token prints the bcrypt hash to put in ADMIN_TOKEN_HASH.
//
// Usage: hash-admin-token <token>   (or set ADMIN_TOKEN)
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/ringtoss/backend/internal/admin"
)

func main() {
	_ = godotenv.Load()

	token := os.Getenv("ADMIN_TOKEN")
	if len(os.Args) > 1 {
		token = os.Args[1]
	}
	if token == "" {
		fmt.Fprintln(os.Stderr, "usage: hash-admin-token <token> (or set ADMIN_TOKEN)")
		os.Exit(2)
	}

	hash, err := admin.HashAdminToken(token)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash-admin-token:", err)
		os.Exit(1)
	}
	fmt.Printf("ADMIN_TOKEN_HASH=%s\n", hash)
}
