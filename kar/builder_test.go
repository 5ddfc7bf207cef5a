// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package kar

import (
	"bytes"
	"testing"
	"time"
)

func TestAddAndWrite(t *testing.T) {
	builder, err := NewBuilder(Header{
		Author:      "devblok",
		DateCreated: time.Now().Unix(),
		Version:     1,
	})
	if err != nil {
		t.Fatal(err)
	}

	builder.Add("test", []byte("idunvovkjnreovmegihjbrqlkmfrjnb"))
	builder.Add("test2", []byte("idunvovkjnreovmsdvwrvnervnreegihjbrqlkmfrjnb"))

	if len(builder.files) != 2 {
		t.Error("incorrect number of files present")
	}

	buf := bytes.NewBuffer([]byte{})
	num, err := builder.WriteTo(buf)
	if err != nil {
		t.Error(err)
	}
	t.Logf("written %d \n", num)

	if len(builder.files) != 0 {
		t.Error("builder not drained after write")
	}
}

func TestOffsetsAreContiguous(t *testing.T) {
	builder, err := NewBuilder(Header{Author: "devblok"})
	if err != nil {
		t.Fatal(err)
	}
	builder.Add("a", bytes.Repeat([]byte("abcd"), 1024))
	builder.Add("b", []byte("efgh"))

	buf := bytes.NewBuffer([]byte{})
	if _, err := builder.WriteTo(buf); err != nil {
		t.Fatal(err)
	}

	ar, err := Open(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}

	first, err := ar.Info("a")
	if err != nil {
		t.Fatal(err)
	}
	second, err := ar.Info("b")
	if err != nil {
		t.Fatal(err)
	}

	if first.Offset != 0 {
		t.Errorf("first entry should sit at data start, has offset %d", first.Offset)
	}
	if second.Offset != first.CompressedSize {
		t.Errorf("second entry offset %d, expected %d", second.Offset, first.CompressedSize)
	}
}
