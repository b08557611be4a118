// Command identityctl is the thin CLI shell over the agentic identity core.
//
// The core package tree is a library: this binary only proves the contract
// named for the CLI surface (--help, --version, non-zero exit on an unknown
// flag). Anything beyond that — issuing identities, recording receipts,
// granting trust — is a host-application concern; the tests of the pkg/
// packages show the call shapes a host would use.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/agentralabs/agentic-identity/pkg/config"
)

// version is set at release time via -ldflags; "dev" otherwise.
var version = "dev"

func main() {
	os.Exit(Run(os.Args, os.Stdout, os.Stderr))
}

// Run is the CLI entrypoint, separated from main for testability. Only the
// config command loads configuration: environment variables first, then (if
// AGENTIC_IDENTITY_CONFIG is set and the file exists) a checked-in YAML
// override layered on top — see pkg/config.LoadWithOverride.
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		printUsage(stdout)
		return 0
	}

	switch args[1] {
	case "version", "--version", "-v":
		fmt.Fprintf(stdout, "identityctl %s\n", version)
		return 0
	case "help", "--help", "-h":
		printUsage(stdout)
		return 0
	case "config":
		return runConfig(stdout, stderr)
	default:
		if len(args[1]) > 0 && args[1][0] == '-' {
			fmt.Fprintf(stderr, "unknown flag: %s\n", args[1])
			printUsage(stderr)
			return 2
		}
		fmt.Fprintf(stderr, "unknown command: %s\n", args[1])
		printUsage(stderr)
		return 2
	}
}

// runConfig loads the effective configuration and prints it, so an operator
// can see exactly what a subsequent host process would resolve before it
// touches storage or an OTLP collector.
func runConfig(stdout, stderr io.Writer) int {
	cfg, err := config.LoadWithOverride(os.Getenv("AGENTIC_IDENTITY_CONFIG"))
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "log_level:        %s\n", cfg.LogLevel)
	fmt.Fprintf(stdout, "storage_root:     %s\n", cfg.StorageRoot)
	fmt.Fprintf(stdout, "storage_backends: %v\n", cfg.EnabledStorageBackends)
	fmt.Fprintf(stdout, "otlp_endpoint:    %s\n", cfg.OTLPEndpoint)
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "identityctl — agentic identity core CLI shell")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "  identityctl <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "COMMANDS:")
	fmt.Fprintln(w, "  version   Show version information")
	fmt.Fprintln(w, "  config    Print the effective configuration (env + AGENTIC_IDENTITY_CONFIG override)")
	fmt.Fprintln(w, "  help      Show this help")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "This binary is a thin shell over the pkg/ library; see the pkg/ package")
	fmt.Fprintln(w, "tests for library call shapes (identity creation, receipts, trust grants).")
}
