package main

import (
	"fmt"
	"os"
)

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  brewin run [flags] [file.br | file.json]")
	fmt.Fprintln(os.Stderr, "  brewin [flags] <file.br>")
	fmt.Fprintln(os.Stderr, "  brewin run --git <url> [--rev R | --tag T | --branch B] <path-in-repo>")
	fmt.Fprintln(os.Stderr, "  brewin test [-j N] [fixtures-dir ...]")
	fmt.Fprintln(os.Stderr, "  brewin version")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Run flags:")
	fmt.Fprintln(os.Stderr, "  --input LINE        supply an inputi line (repeatable; replaces stdin)")
	fmt.Fprintln(os.Stderr, "  --max-depth N       maximum nested function calls")
	fmt.Fprintln(os.Stderr, "  --trace             log every executed statement")
	fmt.Fprintln(os.Stderr, "  --log-level LEVEL   debug, info, warn or error")
	fmt.Fprintln(os.Stderr, "  --ast               read the file as a JSON program tree")
}
