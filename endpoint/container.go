// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package endpoint

// Info is an ordered sequence of descriptors, used as the body of a
// service's primary page. MaxLen bounds the container for embedded
// targets (spec.md recommends N >= 8); zero means unbounded.
type Info struct {
	Descriptors []Descriptor
	MaxLen      int
}

// NewInfo builds an Info container, optionally bounded to maxLen entries
// (0 for unbounded).
func NewInfo(maxLen int, ds ...Descriptor) (Info, error) {
	if maxLen > 0 && len(ds) > maxLen {
		return Info{}, ErrOverrun
	}
	return Info{Descriptors: ds, MaxLen: maxLen}, nil
}

// Equal reports whether i and o carry the same descriptors in the same
// order, used by the engine to decide whether a primary page needs
// regenerating after a restart.
func (i Info) Equal(o Info) bool {
	if len(i.Descriptors) != len(o.Descriptors) {
		return false
	}
	for idx := range i.Descriptors {
		if i.Descriptors[idx] != o.Descriptors[idx] {
			return false
		}
	}
	return true
}

// Contains reports whether d is present in the container.
func (i Info) Contains(d Descriptor) bool {
	for _, e := range i.Descriptors {
		if e == d {
			return true
		}
	}
	return false
}

func (i Info) EncodeLen() int {
	n := 0
	for _, d := range i.Descriptors {
		n += d.EncodeLen()
	}
	return n
}

func (i Info) Encode(buf []byte) (int, error) {
	return EncodeDescriptors(i.Descriptors, buf)
}

// DecodeInfo decodes a concatenation of descriptor options into an Info
// container bounded to maxLen entries (0 for unbounded).
func DecodeInfo(buf []byte, maxLen int) (Info, error) {
	ds, err := DecodeDescriptors(buf, maxLen)
	if err != nil {
		return Info{}, err
	}
	return Info{Descriptors: ds, MaxLen: maxLen}, nil
}

// DataSet is an ordered sequence of values, used as the body of a data
// object. MaxLen bounds the container as Info does.
type DataSet struct {
	Items  []Data
	MaxLen int
}

func NewDataSet(maxLen int, items ...Data) (DataSet, error) {
	if maxLen > 0 && len(items) > maxLen {
		return DataSet{}, ErrOverrun
	}
	return DataSet{Items: items, MaxLen: maxLen}, nil
}

func (d DataSet) EncodeLen() (int, error) {
	n := 0
	for _, it := range d.Items {
		l, err := it.EncodeLen()
		if err != nil {
			return 0, err
		}
		n += l
	}
	return n, nil
}

func (d DataSet) Encode(buf []byte) (int, error) {
	off := 0
	for _, it := range d.Items {
		n, err := it.Encode(buf[off:])
		if err != nil {
			return 0, err
		}
		off += n
	}
	return off, nil
}

// DecodeDataSet decodes a concatenation of value options into a DataSet
// bounded to maxLen entries (0 for unbounded).
func DecodeDataSet(buf []byte, maxLen int) (DataSet, error) {
	var items []Data

	for len(buf) > 0 {
		if maxLen > 0 && len(items) >= maxLen {
			return DataSet{}, ErrOverrun
		}

		d, n, err := DecodeData(buf)
		if err != nil {
			return DataSet{}, err
		}

		items = append(items, d)
		buf = buf[n:]
	}

	return DataSet{Items: items, MaxLen: maxLen}, nil
}

func (d DataSet) Equal(o DataSet) bool {
	if len(d.Items) != len(o.Items) {
		return false
	}
	for i := range d.Items {
		if !d.Items[i].Equal(o.Items[i]) {
			return false
		}
	}
	return true
}
