// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package kar is an api for an lz4 backed archive format.
// Its purpose is to be well suited for streaming resources out of it.
// It's designed to be memory mapped, so (unlike tar) it knows where all
// the files are located before they're read. This nescesitates a bit of
// an unusual setup, where the archive itself is not compressed in any
// form, rather every file is individually compressed, so it could be
// immediately read from its place and decompressed on the fly. This
// somewhat compromises space efficiency, but space efficiency is not
// the primary goal of this package. It instead focuses on getting
// resources from disk to a usable state as fast as possible. It can be
// read from concurrently.
package kar

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
)

// package errors
var (
	ErrFileFormat = errors.New("corrupted or not a kar archive")
	ErrTempFail   = errors.New("temporary folder or file operation failed")
	ErrNotFound   = errors.New("file not present in archive")
)

// Sizes relevant to the header of the file
const (
	MagicLength            = 4
	HeaderSizeNumberLength = 8
)

// Version is the archive format version written by this package.
const Version = 1

var magic = [MagicLength]byte{'K', 'A', 'R', '\x00'}

// IndexEntry is info for one file in the file index. Offset is
// relative to the start of the data section, which follows the
// encoded header immediately.
type IndexEntry struct {
	Name           string
	Offset         int64
	Size           int64
	CompressedSize int64
}

// Header is the file header for kar files.
type Header struct {
	Author      string
	DateCreated int64
	Version     int64
	Index       []IndexEntry
}

func int64ToBinary(num int64) []byte {
	buf := bytes.NewBuffer([]byte{})
	if err := binary.Write(buf, binary.LittleEndian, &num); err != nil {
		panic(err) // If this thing fails you're probably having bigger problems
	}
	return buf.Bytes()
}

func binaryToInt64(bts []byte) (int64, error) {
	var num int64
	if err := binary.Read(bytes.NewReader(bts), binary.LittleEndian, &num); err != nil {
		return 0, err
	}
	return num, nil
}

func gobEncode(data interface{}) ([]byte, error) {
	var encoded bytes.Buffer
	enc := gob.NewEncoder(&encoded)
	if err := enc.Encode(data); err != nil {
		return nil, err
	}
	return encoded.Bytes(), nil
}

func gobDecode(obj interface{}, bts []byte) error {
	return gob.NewDecoder(bytes.NewBuffer(bts)).Decode(obj)
}
