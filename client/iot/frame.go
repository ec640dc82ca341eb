// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package iot

import (
	"bufio"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"
)

// maxFrameLen bounds a single admin frame to keep a misbehaving peer
// from driving an unbounded read.
const maxFrameLen = 1 << 20

// writeFrame writes payload as a protowire varint length prefix
// followed by the payload bytes.
func writeFrame(w io.Writer, payload []byte) error {
	buf := protowire.AppendVarint(nil, uint64(len(payload)))
	buf = append(buf, payload...)
	_, err := w.Write(buf)
	return err
}

// readFrame reads one length-prefixed frame written by writeFrame.
func readFrame(r *bufio.Reader) ([]byte, error) {
	length, err := readVarint(r)
	if err != nil {
		return nil, err
	}
	if length > maxFrameLen {
		return nil, fmt.Errorf("client: frame of %d bytes exceeds limit", length)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// readVarint decodes a protobuf-style varint one byte at a time, since
// protowire.ConsumeVarint wants the whole buffer up front.
func readVarint(r *bufio.Reader) (uint64, error) {
	var buf []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		buf = append(buf, b)
		if b < 0x80 {
			break
		}
		if len(buf) > 10 {
			return 0, fmt.Errorf("client: varint too long")
		}
	}
	v, n := protowire.ConsumeVarint(buf)
	if n < 0 {
		return 0, fmt.Errorf("client: malformed varint")
	}
	return v, nil
}
