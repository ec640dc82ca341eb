// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command iotctl is the operator CLI for a running iotd: it dials the
// daemon's admin socket and issues one administrative operation per
// invocation.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	network string
	address string
)

var rootCmd = &cobra.Command{
	Use:   "iotctl",
	Short: "Operate a running iotd service endpoint",
	Long: `iotctl is the command-line companion to iotd. It connects to a
daemon's admin socket and can register descriptors, publish data,
subscribe to peers, and run one-shot discovery and query operations.`,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&network, "network", "unix", "admin socket network: unix or tcp")
	rootCmd.PersistentFlags().StringVar(&address, "addr", "./iotd.sock", "admin socket address")

	rootCmd.AddCommand(
		createCmd(),
		registerCmd(),
		publishCmd(),
		locateCmd(),
		infoCmd(),
		listCmd(),
		subscribeCmd(),
		unsubscribeCmd(),
		queryCmd(),
		discoverCmd(),
		nsRegisterCmd(),
		nsSearchCmd(),
		genKeysCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "iotctl: %v\n", err)
		os.Exit(1)
	}
}
