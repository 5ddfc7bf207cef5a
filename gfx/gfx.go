// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package gfx defines graphics primitives shared between the driver
// wrappers and the resource pool.
package gfx

// Releasable defines any memory-occupying item that can be freed.
type Releasable interface {

	// Release releases memory occupied by the implementing structure.
	Release()
}

// Extent describes the dimensions of a two dimensional image in pixels.
type Extent struct {
	Width  uint32
	Height uint32
}
