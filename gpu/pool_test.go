// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gpu

import (
	"testing"

	"github.com/devblok/kage/driver"
	vk "github.com/devblok/vulkan"
)

type fakeItem struct {
	id       int
	capacity uint64
	released bool
}

func (f *fakeItem) Release() {
	f.released = true
}

func TestQueuePopsMostRecentlyReleased(t *testing.T) {
	q := idleQueue[*fakeItem]{}
	q.push(&fakeItem{id: 1}, 0)
	q.push(&fakeItem{id: 2}, 1)
	q.push(&fakeItem{id: 3}, 2)

	item, ok := q.popBack()
	if !ok || item.id != 3 {
		t.Errorf("expected item 3, got %+v", item)
	}
	item, ok = q.popBack()
	if !ok || item.id != 2 {
		t.Errorf("expected item 2, got %+v", item)
	}
	if q.len() != 1 {
		t.Errorf("expected 1 item left, have %d", q.len())
	}
}

func TestQueuePopEmpty(t *testing.T) {
	q := idleQueue[*fakeItem]{}
	if _, ok := q.popBack(); ok {
		t.Error("pop from empty queue should report a miss")
	}
}

func TestRemoveLastByPrefersRecent(t *testing.T) {
	q := idleQueue[*fakeItem]{}
	q.push(&fakeItem{id: 1, capacity: 100}, 0)
	q.push(&fakeItem{id: 2, capacity: 100}, 1)
	q.push(&fakeItem{id: 3, capacity: 10}, 2)

	item, ok := q.removeLastBy(func(f *fakeItem) bool { return f.capacity >= 50 })
	if !ok || item.id != 2 {
		t.Errorf("expected the most recent fitting item 2, got %+v", item)
	}
	if q.len() != 2 {
		t.Errorf("expected 2 items left, have %d", q.len())
	}
}

func TestRemoveLastByNoFit(t *testing.T) {
	q := idleQueue[*fakeItem]{}
	q.push(&fakeItem{id: 1, capacity: 10}, 0)

	if _, ok := q.removeLastBy(func(f *fakeItem) bool { return f.capacity >= 50 }); ok {
		t.Error("expected a miss when nothing fits")
	}
	if q.len() != 1 {
		t.Error("a failed scan must not remove anything")
	}
}

func TestDrainStale(t *testing.T) {
	q := idleQueue[*fakeItem]{}
	q.push(&fakeItem{id: 1}, 0)
	q.push(&fakeItem{id: 2}, 5)
	q.push(&fakeItem{id: 3}, 10)

	stale := q.drainStale(10, 8)
	if len(stale) != 1 || stale[0].id != 1 {
		t.Errorf("expected only item 1 drained, got %v", stale)
	}
	if q.len() != 2 {
		t.Errorf("expected 2 items kept, have %d", q.len())
	}

	// exactly at the threshold is still fresh
	stale = q.drainStale(13, 8)
	if len(stale) != 0 {
		t.Errorf("items at the threshold must survive, got %v", stale)
	}
	stale = q.drainStale(14, 8)
	if len(stale) != 1 || stale[0].id != 2 {
		t.Errorf("expected item 2 drained, got %v", stale)
	}
}

func TestLeaseRoundTrip(t *testing.T) {
	q := idleQueue[*fakeItem]{}
	frame := uint64(3)
	item := &fakeItem{id: 7}

	lease := newLease(item, &q, &frame)
	if lease.Item() != item {
		t.Error("lease should hand out the wrapped item")
	}

	frame = 9
	lease.Release()
	if q.len() != 1 {
		t.Fatal("released item should sit on the queue")
	}
	if q.entries[0].released != 9 {
		t.Errorf("release must stamp the current frame, got %d", q.entries[0].released)
	}

	back, ok := q.popBack()
	if !ok || back != item {
		t.Error("expected the same item back from the queue")
	}
}

func TestLeaseDoubleReleaseIsNoop(t *testing.T) {
	q := idleQueue[*fakeItem]{}
	frame := uint64(0)

	lease := newLease(&fakeItem{}, &q, &frame)
	lease.Release()
	lease.Release()
	if q.len() != 1 {
		t.Errorf("double release must not double-return, queue has %d", q.len())
	}
}

func TestLeaseUseAfterReleasePanics(t *testing.T) {
	q := idleQueue[*fakeItem]{}
	frame := uint64(0)

	lease := newLease(&fakeItem{}, &q, &frame)
	lease.Release()

	defer func() {
		if recover() == nil {
			t.Error("Item after Release should panic")
		}
	}()
	lease.Item()
}

func TestReleasedItemIsReusedBeforeConstruction(t *testing.T) {
	q := idleQueue[*fakeItem]{}
	frame := uint64(0)
	first := &fakeItem{id: 1}

	newLease(first, &q, &frame).Release()

	item, ok := q.popBack()
	if !ok || item != first {
		t.Error("a released item must be found before constructing a new one")
	}
}

func TestSizeClass(t *testing.T) {
	cases := []struct {
		size uint64
		want uint32
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 3},
		{1024, 10},
		{1025, 11},
	}
	for _, c := range cases {
		if got := sizeClass(c.size); got != c.want {
			t.Errorf("sizeClass(%d) = %d, want %d", c.size, got, c.want)
		}
	}
}

func TestDescKeyIgnoresOrder(t *testing.T) {
	a := []vk.DescriptorPoolSize{
		{Type: vk.DescriptorTypeUniformBuffer, DescriptorCount: 2},
		{Type: vk.DescriptorTypeCombinedImageSampler, DescriptorCount: 1},
	}
	b := []vk.DescriptorPoolSize{
		{Type: vk.DescriptorTypeCombinedImageSampler, DescriptorCount: 1},
		{Type: vk.DescriptorTypeUniformBuffer, DescriptorCount: 2},
	}

	if descKey(sortedSizes(a)) != descKey(sortedSizes(b)) {
		t.Error("permuted size ranges must map to the same queue")
	}

	c := []vk.DescriptorPoolSize{
		{Type: vk.DescriptorTypeUniformBuffer, DescriptorCount: 3},
	}
	if descKey(sortedSizes(a)) == descKey(sortedSizes(c)) {
		t.Error("different size ranges must map to different queues")
	}
}

func TestPoolFrameClock(t *testing.T) {
	p := New(nil, nil)
	if p.Frame() != 0 {
		t.Error("a new pool starts at frame zero")
	}
	p.NextFrame()
	p.NextFrame()
	if p.Frame() != 2 {
		t.Errorf("expected frame 2, got %d", p.Frame())
	}
}

func TestPoolDrainAgesFences(t *testing.T) {
	p := New(nil, nil)
	p.fences.push(&driver.Fence{}, 0)
	p.fences.push(&driver.Fence{}, 0)

	for i := 0; i < int(p.LRUThreshold); i++ {
		p.NextFrame()
	}
	if stale := p.Drain(); len(stale) != 0 {
		t.Errorf("nothing should drain inside the threshold, got %d", len(stale))
	}

	p.NextFrame()
	if stale := p.Drain(); len(stale) != 2 {
		t.Errorf("expected both idle fences drained, got %d", len(stale))
	}
	if p.fences.len() != 0 {
		t.Error("drained items must leave the queue")
	}
}

func TestPoolDrainKeepsRecentlyReleased(t *testing.T) {
	p := New(nil, nil)
	for i := 0; i < 20; i++ {
		p.NextFrame()
	}
	p.fences.push(&driver.Fence{}, p.Frame())
	p.NextFrame()

	if stale := p.Drain(); len(stale) != 0 {
		t.Errorf("a just-released item must survive a drain, got %d", len(stale))
	}
}
