// One-off: go run scripts/genhash.go [password] [cost]
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/JCROMO11/task-manager-api/internal/auth"
)

func main() {
	password := "admin"
	if len(os.Args) > 1 {
		password = os.Args[1]
	}
	cost := 10
	if len(os.Args) > 2 {
		c, err := strconv.Atoi(os.Args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "cost: %v\n", err)
			os.Exit(2)
		}
		cost = c
	}
	h, err := auth.NewHasher(cost)
	if err != nil {
		panic(err)
	}
	hash, err := h.Hash(password)
	if err != nil {
		panic(err)
	}
	fmt.Print(hash)
}
