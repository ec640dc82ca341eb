// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package iot

import (
	"bufio"
	"net"

	"github.com/luxfi/log"

	"github.com/luxfi/ids"
	"github.com/luxfi/iot/endpoint"
)

// Handler is implemented by whatever owns the running engine and
// answers admin requests on its behalf. A daemon must only call its
// Handler from the same goroutine that drives the engine's Tick loop;
// serveConn hands requests off through s.reqs, drained by Drain, for
// exactly that reason.
type Handler interface {
	Create() (ids.ID, error)
	Register(descriptors []endpoint.Descriptor) error
	Publish(data []endpoint.Data) error
	Locate(id ids.ID) (PeerSummary, bool, error)
	Info() ([]byte, error)
	List() ([]PeerSummary, error)
	Subscribe(id ids.ID, addr string) error
	Unsubscribe(id ids.ID) error
	Query(id ids.ID) ([]byte, error)
	Discover(filter []endpoint.Descriptor) ([]PeerSummary, error)
	NsRegister(namespace string) error
	NsSearch(namespace string) ([]PeerSummary, error)
	GenKeys() (pub, priv []byte, err error)
}

// call is one admin request queued for the engine's goroutine, with a
// channel to deliver its response back to the connection that asked.
type call struct {
	req  Request
	resp chan Response
}

// Server accepts admin connections and serializes their requests onto a
// single channel, so a Handler backed by a non-concurrent engine only
// ever sees one call at a time.
type Server struct {
	ln   net.Listener
	log  log.Logger
	reqs chan call
}

// Listen binds an admin server at addr (network as in net.Listen, e.g.
// "unix" or "tcp").
func Listen(network, addr string, logger log.Logger) (*Server, error) {
	ln, err := net.Listen(network, addr)
	if err != nil {
		return nil, err
	}
	return &Server{ln: ln, log: logger, reqs: make(chan call, 16)}, nil
}

func (s *Server) Close() error { return s.ln.Close() }

// Accept loops accepting connections until the listener is closed,
// dispatching each one's requests onto s.reqs. Run it in its own
// goroutine.
func (s *Server) Accept() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.serveConn(conn)
	}
}

func (s *Server) serveConn(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	for {
		raw, err := readFrame(r)
		if err != nil {
			return
		}
		req, err := decodeRequest(raw)
		if err != nil {
			return
		}

		respCh := make(chan Response, 1)
		s.reqs <- call{req: req, resp: respCh}
		resp := <-respCh

		out, err := encodeResponse(resp)
		if err != nil {
			return
		}
		if err := writeFrame(conn, out); err != nil {
			return
		}
	}
}

// Drain processes at most one queued admin call against h, returning
// true if one was handled. Call it from the engine's own goroutine
// alongside Tick.
func (s *Server) Drain(h Handler) bool {
	select {
	case c := <-s.reqs:
		c.resp <- dispatch(h, c.req)
		return true
	default:
		return false
	}
}

func dispatch(h Handler, req Request) Response {
	switch req.Op {
	case OpCreate:
		id, err := h.Create()
		if err != nil {
			return errResp(err)
		}
		return Response{Ok: true, Id: id}

	case OpRegister:
		if err := h.Register(req.Descriptors); err != nil {
			return errResp(err)
		}
		return Response{Ok: true}

	case OpPublish:
		if err := h.Publish(req.Data); err != nil {
			return errResp(err)
		}
		return Response{Ok: true}

	case OpLocate:
		p, found, err := h.Locate(req.PeerId)
		if err != nil {
			return errResp(err)
		}
		if !found {
			return Response{Ok: true}
		}
		return Response{Ok: true, Peers: []PeerSummary{p}}

	case OpInfo:
		page, err := h.Info()
		if err != nil {
			return errResp(err)
		}
		return Response{Ok: true, Page: page}

	case OpList:
		peers, err := h.List()
		if err != nil {
			return errResp(err)
		}
		return Response{Ok: true, Peers: peers}

	case OpSubscribe:
		if err := h.Subscribe(req.PeerId, req.Addr); err != nil {
			return errResp(err)
		}
		return Response{Ok: true}

	case OpUnsub:
		if err := h.Unsubscribe(req.PeerId); err != nil {
			return errResp(err)
		}
		return Response{Ok: true}

	case OpQuery:
		page, err := h.Query(req.PeerId)
		if err != nil {
			return errResp(err)
		}
		return Response{Ok: true, Page: page}

	case OpDiscover:
		peers, err := h.Discover(req.Filter)
		if err != nil {
			return errResp(err)
		}
		return Response{Ok: true, Peers: peers}

	case OpNsRegister:
		if err := h.NsRegister(req.Namespace); err != nil {
			return errResp(err)
		}
		return Response{Ok: true}

	case OpNsSearch:
		peers, err := h.NsSearch(req.Namespace)
		if err != nil {
			return errResp(err)
		}
		return Response{Ok: true, Peers: peers}

	case OpGenKeys:
		pub, priv, err := h.GenKeys()
		if err != nil {
			return errResp(err)
		}
		return Response{Ok: true, PubKey: pub, PrivKey: priv}

	default:
		return Response{Ok: false, Error: "unknown op " + string(req.Op)}
	}
}

func errResp(err error) Response {
	return Response{Ok: false, Error: err.Error()}
}
