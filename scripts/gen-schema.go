//go:build ignore

package main

import (
	"fmt"
	"os"

	"github.com/fdcavalcanti/ntxbuild/pkg/workspace"
)

func main() {
	data, err := workspace.GenerateRecordSchema()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll("schemas", 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile("schemas/ntxenv-v1.json", append(data, '\n'), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("wrote schemas/ntxenv-v1.json")
}
