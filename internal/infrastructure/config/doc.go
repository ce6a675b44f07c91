// Package config handles loading and validating smart-home core configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with SMARTHOME_* environment variables
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - Sensitive values (DSNs, passwords, tokens) should be set via environment variables
//   - The JWT secret has no default and must be at least 32 characters
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Database.Driver)
package config
