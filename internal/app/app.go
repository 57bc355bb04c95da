package app

import (
	"fmt"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "health":
		return runHealth(args[1:])
	case "translate":
		return runTranslate(args[1:])
	case "combinations", "list":
		return runCombinations(args[1:])
	case "check":
		return runCheck(args[1:])
	case "serve":
		return runServe(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "textra CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  textra <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  health        Verify credentials and translation cache connectivity")
	fmt.Fprintln(os.Stderr, "  translate     Translate text given as arguments or on stdin")
	fmt.Fprintln(os.Stderr, "  combinations  List supported mode and language combinations")
	fmt.Fprintln(os.Stderr, "  list          Alias for combinations")
	fmt.Fprintln(os.Stderr, "  check         Exit 0 when a combination is supported, 1 otherwise")
	fmt.Fprintln(os.Stderr, "  serve         Start the HTTP translation gateway")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"textra <command> -h\" for command-specific flags.")
}
