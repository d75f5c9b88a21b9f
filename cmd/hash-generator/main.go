// Command hash-generator prints bcrypt hashes suitable for seeding the
// users.hashed_password column, e.g. for a bootstrap admin account.
//
//	hash-generator -cost 12 'first password' 'second password'
//	echo 'from stdin' | hash-generator
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/service/auth"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost factor (4-31)")
	flag.Parse()

	passwords := flag.Args()
	if len(passwords) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			passwords = append(passwords, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "reading stdin: %v\n", err)
			os.Exit(1)
		}
	}

	failed := false
	for _, password := range passwords {
		if err := domain.ValidatePassword(password); err != nil {
			fmt.Fprintf(os.Stderr, "skipping password: %v\n", err)
			failed = true
			continue
		}
		hash, err := auth.HashPassword(password, *cost)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error generating hash: %v\n", err)
			failed = true
			continue
		}
		fmt.Println(hash)
	}

	if failed {
		os.Exit(1)
	}
}
