// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package kar_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/devblok/kage/kar"
)

var (
	testString1 = "idunvovkjnreovmegihjbrqlkmfrjnb"
	testString2 = "idunvovkjnreovmsdvwrvnervnreegihjbrqlkmfrjnb"
)

func buildArchive(t *testing.T) []byte {
	t.Helper()
	builder, err := kar.NewBuilder(kar.Header{
		Author:      "devblok",
		DateCreated: time.Now().Unix(),
		Version:     1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := builder.Add("test", []byte(testString1)); err != nil {
		t.Fatal(err)
	}
	if err := builder.Add("test2", []byte(testString2)); err != nil {
		t.Fatal(err)
	}

	buf := bytes.NewBuffer([]byte{})
	written, err := builder.WriteTo(buf)
	if err != nil {
		t.Fatal(err)
	}
	if written != int64(buf.Len()) {
		t.Errorf("reported %d written, buffer has %d", written, buf.Len())
	}
	return buf.Bytes()
}

func TestCreateAndRead(t *testing.T) {
	ar, err := kar.Open(bytes.NewReader(buildArchive(t)))
	if err != nil {
		t.Fatal(err)
	}

	f, err := ar.Open("test")
	if err != nil {
		t.Fatal(err)
	}
	if f.Size() != int64(len(testString1)) {
		t.Errorf("expected size %d, got %d", len(testString1), f.Size())
	}

	result, err := io.ReadAll(f)
	if err != nil {
		t.Error(err)
	}
	if strings.Compare(string(result), testString1) != 0 {
		t.Error("test string does not match up")
	}
}

func TestCreateAndReadAll(t *testing.T) {
	ar, err := kar.Open(bytes.NewReader(buildArchive(t)))
	if err != nil {
		t.Fatal(err)
	}

	f, err := ar.ReadAll("test2")
	if err != nil {
		t.Error(err)
	}
	if strings.Compare(string(f), testString2) != 0 {
		t.Error("test string does not match up")
	}
}

func TestConcurrentRead(t *testing.T) {
	ar, err := kar.Open(bytes.NewReader(buildArchive(t)))
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f, err := ar.ReadAll("test")
			if err != nil {
				t.Error(err)
				return
			}
			if strings.Compare(string(f), testString1) != 0 {
				t.Error("test string does not match up")
			}
		}()
	}
	wg.Wait()
}

func TestNames(t *testing.T) {
	ar, err := kar.Open(bytes.NewReader(buildArchive(t)))
	if err != nil {
		t.Fatal(err)
	}

	names := ar.Names()
	if len(names) != 2 || names[0] != "test" || names[1] != "test2" {
		t.Errorf("unexpected name list: %v", names)
	}
}

func TestNotFound(t *testing.T) {
	ar, err := kar.Open(bytes.NewReader(buildArchive(t)))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ar.Open("missing"); !errors.Is(err, kar.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestOpenRejectsGarbage(t *testing.T) {
	if _, err := kar.Open(bytes.NewReader([]byte("not an archive at all"))); !errors.Is(err, kar.ErrFileFormat) {
		t.Errorf("expected ErrFileFormat, got %v", err)
	}
}
