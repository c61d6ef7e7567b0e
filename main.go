// Private Feed Keys grants feed-reader access to restricted blogs on a
// multi-site platform. Each (site, user) pair gets a durable unguessable
// token; presenting it on a feed URL authenticates the request as that user
// without interactive login.
package main

import (
	"embed"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/adamfranco/private-feed-keys/internal/bootstrap"
	"github.com/adamfranco/private-feed-keys/internal/config"
	"github.com/adamfranco/private-feed-keys/internal/version"
)

//go:embed internal/templates/*.html
var templatesFS embed.FS

func main() {
	// Define flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Usage = printUsage
	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		version.PrintVersion()
		os.Exit(0)
	}

	// Check if command is provided
	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	// Handle subcommands
	switch args[0] {
	case "server":
		runServer()
	default:
		fmt.Printf("Unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("Usage: %s [OPTIONS] COMMAND\n\n", os.Args[0])
	fmt.Println("Private feed key server for multi-site blog platforms")
	fmt.Println("\nCommands:")
	fmt.Println("  server    Start the server")
	fmt.Println("\nOptions:")
	fmt.Println("  -v, --version    Show version information")
	fmt.Println("  -h, --help       Show this help message")
}

func runServer() {
	// Load configuration
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := bootstrap.Run(cfg, templatesFS); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}
