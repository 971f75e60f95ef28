// Package config provides configuration management for the trip planner.
//
// Configuration is loaded from environment variables using the env package,
// after reading a .env file from the working directory when one exists. An
// optional YAML file can override any value.
//
// Example usage:
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("HTTP server will listen on %s\n", cfg.GetHTTPAddr())
package config
