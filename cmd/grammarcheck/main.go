// # cmd/grammarcheck/main.go
package main

import (
	"context"
	"os"

	"grammarcheck/internal/cliapp"
)

func main() {
	os.Exit(cliapp.Execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
