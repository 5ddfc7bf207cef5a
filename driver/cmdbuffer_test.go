// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package driver

import (
	"testing"
)

type countingDrop struct {
	releases int
}

func (c *countingDrop) Release() {
	c.releases++
}

func TestDropFencedReleasesEverything(t *testing.T) {
	cmd := &CommandBuffer{}
	first := &countingDrop{}
	second := &countingDrop{}

	cmd.PushFencedDrop(first)
	cmd.PushFencedDrop(second)
	cmd.DropFenced()

	if first.releases != 1 || second.releases != 1 {
		t.Errorf("every droppable must be released exactly once, got %d and %d",
			first.releases, second.releases)
	}
}

func TestDropFencedDrainsTheList(t *testing.T) {
	cmd := &CommandBuffer{}
	item := &countingDrop{}

	cmd.PushFencedDrop(item)
	cmd.DropFenced()
	cmd.DropFenced()

	if item.releases != 1 {
		t.Errorf("a second drop pass must find nothing, item released %d times", item.releases)
	}
}

func TestDropFencedOnEmptyBuffer(t *testing.T) {
	cmd := &CommandBuffer{}
	cmd.DropFenced()
}

func TestDroppablesAccumulateAcrossPushes(t *testing.T) {
	cmd := &CommandBuffer{}
	items := make([]*countingDrop, 5)
	for i := range items {
		items[i] = &countingDrop{}
		cmd.PushFencedDrop(items[i])
	}
	if len(cmd.droppables) != 5 {
		t.Fatalf("expected 5 registered droppables, have %d", len(cmd.droppables))
	}
	cmd.DropFenced()
	for i, item := range items {
		if item.releases != 1 {
			t.Errorf("droppable %d released %d times", i, item.releases)
		}
	}
}
