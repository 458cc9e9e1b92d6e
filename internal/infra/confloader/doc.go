// Package confloader provides the configuration loading mechanism.
//
// This package implements a configuration loader that supports multiple
// sources using koanf as the underlying library.
//
// Features:
//
//   - Multiple Sources: YAML files, environment variables, flag maps
//   - Watch Support: Automatic reload on config file changes
//   - Type Safety: Unmarshaling into typed structs
//
// Priority (highest to lowest):
//
//  1. Command-line flags
//  2. Environment variables
//  3. Configuration files
//  4. Default values
package confloader
