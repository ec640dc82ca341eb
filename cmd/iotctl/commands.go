// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/hex"
	"fmt"

	"github.com/luxfi/ids"
	"github.com/spf13/cobra"

	clientiot "github.com/luxfi/iot/client/iot"
)

func dial() (*clientiot.Client, error) {
	return clientiot.Dial(network, address)
}

func createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Ensure the daemon has a signing identity, printing its id",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			id, err := c.Create()
			if err != nil {
				return err
			}
			fmt.Println(id)
			return nil
		},
	}
}

func registerCmd() *cobra.Command {
	var descriptors string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Publish the given descriptor set as the daemon's primary page",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := parseDescriptors(descriptors)
			if err != nil {
				return err
			}
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			return c.Register(ds)
		},
	}
	cmd.Flags().StringVar(&descriptors, "descriptors", "", "comma-separated kind:flags pairs")
	return cmd
}

func publishCmd() *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a data object to subscribers",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseData(data)
			if err != nil {
				return err
			}
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			return c.Publish(d)
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "comma-separated kind:value pairs")
	return cmd
}

func locateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "locate [peer-id]",
		Short: "Report what the daemon knows about a peer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ids.FromString(args[0])
			if err != nil {
				return err
			}
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			p, err := c.Locate(id)
			if err != nil {
				return err
			}
			fmt.Printf("%s addr=%s subscriber=%v subscribed=%s\n", p.Id, p.Addr, p.Subscriber, p.Subscribed)
			return nil
		},
	}
}

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print the daemon's own primary page, hex-encoded",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			page, err := c.Info()
			if err != nil {
				return err
			}
			fmt.Println(hex.EncodeToString(page))
			return nil
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every peer the daemon has on record",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			peers, err := c.List()
			if err != nil {
				return err
			}
			for _, p := range peers {
				fmt.Printf("%s addr=%s subscriber=%v subscribed=%s\n", p.Id, p.Addr, p.Subscriber, p.Subscribed)
			}
			return nil
		},
	}
}

func subscribeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "subscribe [peer-id]",
		Short: "Subscribe to updates from a peer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ids.FromString(args[0])
			if err != nil {
				return err
			}
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			return c.Subscribe(id, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "at", "", "peer's UDP address (host:port)")
	return cmd
}

func unsubscribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unsubscribe [peer-id]",
		Short: "Stop following a peer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ids.FromString(args[0])
			if err != nil {
				return err
			}
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			return c.Unsubscribe(id)
		},
	}
}

func queryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query [peer-id]",
		Short: "Ask a known peer to resend its primary page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ids.FromString(args[0])
			if err != nil {
				return err
			}
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			_, err = c.Query(id)
			return err
		},
	}
}

func discoverCmd() *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Broadcast a discovery request and print peers found",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := parseDescriptors(filter)
			if err != nil {
				return err
			}
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			peers, err := c.Discover(ds)
			if err != nil {
				return err
			}
			for _, p := range peers {
				fmt.Printf("%s addr=%s\n", p.Id, p.Addr)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "comma-separated kind:flags pairs to match")
	return cmd
}

func nsRegisterCmd() *cobra.Command {
	var namespace string
	cmd := &cobra.Command{
		Use:   "ns-register",
		Short: "Advertise the daemon over mDNS under a namespace",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			return c.NsRegister(namespace)
		},
	}
	cmd.Flags().StringVar(&namespace, "namespace", "iotd", "mDNS instance name")
	return cmd
}

func nsSearchCmd() *cobra.Command {
	var namespace string
	cmd := &cobra.Command{
		Use:   "ns-search",
		Short: "Browse mDNS for advertised services",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			peers, err := c.NsSearch(namespace)
			if err != nil {
				return err
			}
			for _, p := range peers {
				fmt.Printf("addr=%s\n", p.Addr)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&namespace, "namespace", "iotd", "mDNS namespace to browse")
	return cmd
}

func genKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gen-keys",
		Short: "Generate a detached ed25519 keypair",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			pub, priv, err := c.GenKeys()
			if err != nil {
				return err
			}
			fmt.Printf("public:  %s\n", hex.EncodeToString(pub))
			fmt.Printf("private: %s\n", hex.EncodeToString(priv))
			return nil
		},
	}
}
