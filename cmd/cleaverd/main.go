// Command cleaverd runs the cleaver daemon in the foreground: the workflow
// loop that drains the cut queue plus the HTTP server on the configured
// bind address.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"cleaver/internal/config"
	"cleaver/internal/daemonrun"
)

func main() {
	var (
		configPath string
		logLevel   string
	)
	flag.StringVar(&configPath, "config", "", "path to the config file")
	flag.StringVar(&logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")
	flag.Parse()

	cfg, resolvedPath, exists, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cleaverd: %v\n", err)
		os.Exit(1)
	}
	if !exists {
		fmt.Fprintf(os.Stderr, "cleaverd: no config file at %s, running with defaults\n", resolvedPath)
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{LogLevel: logLevel}); err != nil {
		fmt.Fprintf(os.Stderr, "cleaverd: %v\n", err)
		os.Exit(1)
	}
}
