// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/devblok/kage/kar"
)

func init() {
	u, err := user.Current()
	if err != nil {
		currentUserName = "unknown"
		return
	}
	currentUserName = u.Name
}

var (
	currentUserName string
	author          = flag.String("author", currentUserName, "Set the author of the package when compressing")
	version         = flag.Int64("version", 1, "Archive version number to create it with")
	extract         = flag.String("e", "", "Extract the file given")
	compress        = flag.String("c", "", "Compress the given file/folder")
	list            = flag.String("l", "", "List the contents of the given archive")
	dstFile         = flag.String("f", "out.kar", "Destination file")
)

func main() {
	var opMade bool
	flag.Parse()

	if *extract != "" && *compress != "" {
		panic(errors.New("only one operation at a time"))
	}

	if *extract != "" {
		opMade = true
		if err := extractFiles(); err != nil {
			panic(err)
		}
	}

	if *compress != "" {
		opMade = true
		if err := compressFiles(); err != nil {
			panic(err)
		}
	}

	if *list != "" {
		opMade = true
		if err := listFiles(); err != nil {
			panic(err)
		}
	}

	if !opMade {
		flag.PrintDefaults()
	}
}

func compressFiles() error {
	if _, err := os.Stat(*dstFile); err == nil {
		return errors.New("destination file exists, will not overwrite")
	}

	dst, err := os.Create(*dstFile)
	if err != nil {
		return err
	}
	defer dst.Close()

	var filesToCompress []string
	filepath.Walk(*compress, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		filesToCompress = append(filesToCompress, path)
		return nil
	})

	karBuilder, err := kar.NewBuilder(kar.Header{
		Author:      *author,
		DateCreated: time.Now().Unix(),
		Version:     *version,
	})
	if err != nil {
		return err
	}

	for _, ftc := range filesToCompress {
		data, err := os.ReadFile(ftc)
		if err != nil {
			return err
		}
		if err := karBuilder.Add(ftc, data); err != nil {
			return err
		}
	}

	_, err = karBuilder.WriteTo(dst)
	return err
}

func extractFiles() error {
	src, err := os.Open(*extract)
	if err != nil {
		return err
	}
	defer src.Close()

	archive, err := kar.Open(src)
	if err != nil {
		return err
	}

	for _, name := range archive.Names() {
		reader, err := archive.Open(name)
		if err != nil {
			return err
		}

		path := filepath.Clean(name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		out, err := os.Create(path)
		if err != nil {
			return err
		}
		_, err = io.Copy(out, reader)
		out.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func listFiles() error {
	src, err := os.Open(*list)
	if err != nil {
		return err
	}
	defer src.Close()

	archive, err := kar.Open(src)
	if err != nil {
		return err
	}

	header := archive.Header()
	fmt.Printf("author: %s, created: %s, version: %d\n",
		header.Author, time.Unix(header.DateCreated, 0).Format(time.RFC822), header.Version)
	for _, entry := range header.Index {
		fmt.Printf("%s\t%d -> %d bytes\n", entry.Name, entry.Size, entry.CompressedSize)
	}
	return nil
}
