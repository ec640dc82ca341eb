// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package endpoint

// Data holds one measurement associated with an endpoint. It decodes
// identically to the value option it wraps.
type Data struct {
	Value Value
}

func NewData(v Value) Data { return Data{Value: v} }

func (d Data) EncodeLen() (int, error) { return d.Value.EncodeLen() }

func (d Data) Encode(buf []byte) (int, error) { return d.Value.Encode(buf) }

// DecodeData reads one Data entry from buf.
func DecodeData(buf []byte) (Data, int, error) {
	v, n, err := DecodeValue(buf)
	if err != nil {
		return Data{}, 0, err
	}
	return Data{Value: v}, n, nil
}

func (d Data) Equal(o Data) bool { return d.Value.Equal(o.Value) }
