// Package config loads and validates the Powerwall monitor configuration.
//
// Configuration comes from a single YAML file with three layers of
// precedence (lowest to highest):
//
//  1. Built-in defaults
//  2. The YAML file
//  3. Environment variable overrides (PWMON_SECTION_KEY)
//
// Environment overrides exist primarily so that secrets (gateway password,
// InfluxDB token, MQTT credentials) can stay out of the file on disk.
//
// # Usage
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    // startup failure: the process must not start the loop
//	}
//
// Validation collects every problem into one error so a misconfigured
// deployment is fixed in one pass rather than one restart per mistake.
package config
