// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package iot

import (
	"bufio"
	"fmt"
	"net"
	"time"

	"github.com/luxfi/ids"

	"github.com/luxfi/iot/endpoint"
)

// Client is a connection to a running iotd's admin socket.
type Client struct {
	conn net.Conn
	r    *bufio.Reader
}

// Dial connects to a daemon's admin endpoint. network/addr follow
// net.Dial, e.g. ("unix", "/var/run/iotd.sock") or ("tcp", "127.0.0.1:10101").
func Dial(network, addr string) (*Client, error) {
	conn, err := net.DialTimeout(network, addr, 5*time.Second)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, r: bufio.NewReader(conn)}, nil
}

func (c *Client) Close() error { return c.conn.Close() }

func (c *Client) call(req Request) (Response, error) {
	payload, err := encodeRequest(req)
	if err != nil {
		return Response{}, err
	}
	if err := writeFrame(c.conn, payload); err != nil {
		return Response{}, err
	}
	raw, err := readFrame(c.r)
	if err != nil {
		return Response{}, err
	}
	resp, err := decodeResponse(raw)
	if err != nil {
		return Response{}, err
	}
	if !resp.Ok {
		return resp, fmt.Errorf("iotd: %s", resp.Error)
	}
	return resp, nil
}

// Create asks the daemon for its signing identity and returns its id.
// The iotd handler keeps its existing keys; it does not re-key.
func (c *Client) Create() (ids.ID, error) {
	resp, err := c.call(Request{Op: OpCreate})
	return resp.Id, err
}

// Register publishes the daemon's descriptor set as its primary page.
func (c *Client) Register(descriptors []endpoint.Descriptor) error {
	_, err := c.call(Request{Op: OpRegister, Descriptors: descriptors})
	return err
}

// Publish sends a new data object carrying data to the daemon's
// subscribers.
func (c *Client) Publish(data []endpoint.Data) error {
	_, err := c.call(Request{Op: OpPublish, Data: data})
	return err
}

// Locate asks the daemon whether it has a peer record for id, and at
// what address.
func (c *Client) Locate(id ids.ID) (PeerSummary, error) {
	resp, err := c.call(Request{Op: OpLocate, PeerId: id})
	if err != nil {
		return PeerSummary{}, err
	}
	if len(resp.Peers) == 0 {
		return PeerSummary{}, fmt.Errorf("iotd: peer %s not known", id)
	}
	return resp.Peers[0], nil
}

// Info returns the daemon's own primary page, encoded.
func (c *Client) Info() ([]byte, error) {
	resp, err := c.call(Request{Op: OpInfo})
	return resp.Page, err
}

// List returns every peer the daemon currently has on record.
func (c *Client) List() ([]PeerSummary, error) {
	resp, err := c.call(Request{Op: OpList})
	return resp.Peers, err
}

// Subscribe asks the daemon to subscribe to updates from peer id at addr.
func (c *Client) Subscribe(id ids.ID, addr string) error {
	_, err := c.call(Request{Op: OpSubscribe, PeerId: id, Addr: addr})
	return err
}

// Unsubscribe asks the daemon to stop following peer id.
func (c *Client) Unsubscribe(id ids.ID) error {
	_, err := c.call(Request{Op: OpUnsub, PeerId: id})
	return err
}

// Query asks the daemon to send a live query for peer id's primary page.
// The iotd handler returns no page: the reply arrives on a later engine
// tick and is read back with Locate, List or Info.
func (c *Client) Query(id ids.ID) ([]byte, error) {
	resp, err := c.call(Request{Op: OpQuery, PeerId: id})
	return resp.Page, err
}

// Discover asks the daemon to broadcast a discovery request matching
// filter and returns the peers it has on record at that moment; replies
// to this broadcast arrive on later ticks.
func (c *Client) Discover(filter []endpoint.Descriptor) ([]PeerSummary, error) {
	resp, err := c.call(Request{Op: OpDiscover, Filter: filter})
	return resp.Peers, err
}

// NsRegister advertises the daemon under an mDNS namespace/instance name.
func (c *Client) NsRegister(namespace string) error {
	_, err := c.call(Request{Op: OpNsRegister, Namespace: namespace})
	return err
}

// NsSearch browses an mDNS namespace and returns any services found.
func (c *Client) NsSearch(namespace string) ([]PeerSummary, error) {
	resp, err := c.call(Request{Op: OpNsSearch, Namespace: namespace})
	return resp.Peers, err
}

// GenKeys asks the daemon to generate a detached ed25519 keypair without
// adopting it as the daemon's own identity, returning the raw key bytes.
func (c *Client) GenKeys() (pub, priv []byte, err error) {
	resp, err := c.call(Request{Op: OpGenKeys})
	if err != nil {
		return nil, nil, err
	}
	return resp.PubKey, resp.PrivKey, nil
}
