// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command iotd runs a single service endpoint as a long-lived daemon:
// it loads a config file, opens a store, binds UDP comms, and drives
// the engine's Tick loop until interrupted.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "iotd",
	Short: "Run a signed, content-addressed IoT endpoint service",
	Long: `iotd runs one service endpoint: it publishes a self-signed descriptor
page, accepts subscriptions, forwards published data to subscribers, and
answers discovery and query requests from peers on the local network.`,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a JSON config file")
	rootCmd.AddCommand(runCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "iotd: %v\n", err)
		os.Exit(1)
	}
}
