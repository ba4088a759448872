// Package config provides functionality for managing configuration options
// for the application using command-line flags and environment variables.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"
)

// Options holds the configuration values for the application.
type Options struct {
	// Addr defines the dashboard API listening address (ip:port).
	Addr string

	// StorePath is the path of the local on-device store file.
	StorePath string

	// InsightAPIKey is the credential for the text-completion service.
	// Empty disables AI insights (callers receive fallback strings).
	InsightAPIKey string

	// Config is the path to the Config file.
	Config string
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Addr, "a", "localhost:8080", "dashboard API ip:port")
	flag.StringVar(&options.StorePath, "s", "data/bprogress.db", "local store file path")
	flag.StringVar(&options.InsightAPIKey, "k", "", "text-completion API key")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It returns a pointer to the Options struct containing
// the parsed configuration values.
func Parse() *Options {
	flag.Parse()

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Addr = serverAddress
	}
	if storePath := os.Getenv("STORE_PATH"); storePath != "" {
		options.StorePath = storePath
	}
	if apiKey := os.Getenv("INSIGHT_API_KEY"); apiKey != "" {
		options.InsightAPIKey = apiKey
	}

	return options
}
