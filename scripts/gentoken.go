// Command gentoken prints bearer tokens for local testing.
//
//	JWT_SECRET=dev go run ./scripts -id 3 -role manager
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/domain"
	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/auth"
)

func main() {
	_ = godotenv.Load()

	id := flag.Int64("id", 0, "user id (0 prints one token per demo user)")
	role := flag.String("role", "", "student, employer, manager or instructor")
	email := flag.String("email", "", "email claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	issuer, err := auth.NewIssuer(os.Getenv("JWT_SECRET"), *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	// Matches memory.SeedDemo
	users := []struct {
		id   int64
		role domain.Role
	}{
		{1, domain.RoleStudent},
		{2, domain.RoleEmployer},
		{3, domain.RoleManager},
		{4, domain.RoleInstructor},
	}
	if *id != 0 {
		if !domain.Role(*role).Valid() {
			fmt.Fprintf(os.Stderr, "Error: invalid role %q\n", *role)
			os.Exit(1)
		}
		users = users[:1]
		users[0].id, users[0].role = *id, domain.Role(*role)
	}

	for _, u := range users {
		token, err := issuer.Issue(u.id, string(u.role), *email)
		if err != nil {
			fmt.Println("Error:", err)
			continue
		}
		fmt.Printf("User: %d (%s)\nToken: %s\n\n", u.id, u.role, token)
	}
}
