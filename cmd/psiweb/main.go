package main

import (
	"fmt"
	"log"
	"os"

	"github.com/vidaplena/psiweb"
	"github.com/vidaplena/psiweb/views"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "serve":
		if err := serve(); err != nil {
			log.Fatal(err)
		}
	case "images":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: psiweb images <dir>")
			os.Exit(1)
		}
		if err := runImages(os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("psiweb %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func serve() error {
	cfg, err := psiweb.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	app := psiweb.New(cfg, views.Funcs())
	defer app.Close()
	return app.Start()
}

func printUsage() {
	fmt.Println(`psiweb - site e blog da Vida Plena Psicologia

Usage:
  psiweb <command> [arguments]

Commands:
  serve         Start the web server (default)
  images <dir>  Normalize cover images in a directory (resize + JPEG)
  version       Print the psiweb version
  help          Show this help message`)
}
