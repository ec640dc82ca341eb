// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package iot is the operator-facing client for a running iotd daemon.
// It speaks a small request/response admin protocol over a stream
// connection (a Unix domain socket by default, or TCP), distinct from
// the signed UDP protocol engine/iot uses between peers.
package iot

import (
	"encoding/json"

	"github.com/luxfi/ids"

	"github.com/luxfi/iot/endpoint"
)

// Op names one administrative operation a client may ask the daemon to
// perform.
type Op string

const (
	OpCreate     Op = "create"
	OpRegister   Op = "register"
	OpPublish    Op = "publish"
	OpLocate     Op = "locate"
	OpInfo       Op = "info"
	OpList       Op = "list"
	OpSubscribe  Op = "subscribe"
	OpUnsub      Op = "unsubscribe"
	OpQuery      Op = "query"
	OpDiscover   Op = "discover"
	OpNsRegister Op = "ns-register"
	OpNsSearch   Op = "ns-search"
	OpGenKeys    Op = "gen-keys"
)

// Request is one admin call, JSON-encoded over the wire. Fields not
// relevant to Op are left zero.
type Request struct {
	Op          Op                    `json:"op"`
	PeerId      ids.ID                `json:"peer_id,omitempty"`
	Addr        string                `json:"addr,omitempty"`
	Descriptors []endpoint.Descriptor `json:"descriptors,omitempty"`
	Data        []endpoint.Data       `json:"data,omitempty"`
	Filter      []endpoint.Descriptor `json:"filter,omitempty"`
	Namespace   string                `json:"namespace,omitempty"`
}

// PeerSummary is one row of a List or NsSearch response.
type PeerSummary struct {
	Id         ids.ID `json:"id"`
	Addr       string `json:"addr,omitempty"`
	Subscriber bool   `json:"subscriber"`
	Subscribed string `json:"subscribed"`
}

// Response is the daemon's reply to a Request.
type Response struct {
	Ok      bool          `json:"ok"`
	Error   string        `json:"error,omitempty"`
	Id      ids.ID        `json:"id,omitempty"`
	Page    []byte        `json:"page,omitempty"`
	Peers   []PeerSummary `json:"peers,omitempty"`
	PubKey  []byte        `json:"pub_key,omitempty"`
	PrivKey []byte        `json:"priv_key,omitempty"`
}

func encodeRequest(r Request) ([]byte, error) { return json.Marshal(r) }

func decodeRequest(b []byte) (Request, error) {
	var r Request
	err := json.Unmarshal(b, &r)
	return r, err
}

func encodeResponse(r Response) ([]byte, error) { return json.Marshal(r) }

func decodeResponse(b []byte) (Response, error) {
	var r Response
	err := json.Unmarshal(b, &r)
	return r, err
}
