// Package main provides the entry point for qlsim.
// qlsim is a Sinclair QL and NEXTP8 board emulator built around a
// 68008 core.
//
// For the full CLI, use: go run ./cmd/qlsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("qlsim - Sinclair QL / NEXTP8 emulator")
	fmt.Println("")
	fmt.Println("Usage: qlsim -rom <image> [options]")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -machine   Machine profile: ql or p8")
	fmt.Println("  -disk      BDI disk image")
	fmt.Println("  -trace     Per-instruction register trace")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/qlsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/qlsim' instead.")
	}
}
