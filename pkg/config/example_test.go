package config_test

import (
	"fmt"

	"github.com/wonny/vwapcast/pkg/config"
)

// Example demonstrates how to use the config package
func Example() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	// Access configuration values
	fmt.Printf("Environment: %s\n", cfg.Env)
	fmt.Printf("Data source: %s (%s)\n", cfg.Data.Source, cfg.Data.Archive)
	fmt.Printf("Report dir: %s\n", cfg.Run.ReportDir)
	fmt.Printf("Workers: %d\n", cfg.Run.Workers)
}
