// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package gpu implements the resource leasing and caching subsystem of
// the renderer. A Pool keeps typed idle queues of constructed driver
// objects keyed by their creation parameters and hands them out through
// leases, so a frame never pays the full cost of creating and
// destroying driver objects.
//
// The pool is single-threaded by design: every operation must happen on
// the frame-building thread. GPU-side concurrency is handled separately
// through command buffer fences.
package gpu

import (
	"fmt"
	"math/bits"
	"sort"

	"github.com/devblok/kage/driver"
	"github.com/devblok/kage/gfx"
	"github.com/devblok/kage/shader"
	vk "github.com/devblok/vulkan"
	log "github.com/sirupsen/logrus"
)

// DefaultLRUThreshold is the number of frames an item may sit idle
// before Drain considers it obsolete.
const DefaultLRUThreshold = 8

type descPoolKey string

type graphicsKey struct {
	mode     GraphicsMode
	passMode RenderPassMode
	subpass  uint32
}

type memoryKey struct {
	typeIndex uint32
	class     uint32
}

type textureKey struct {
	dims    gfx.Extent
	format  vk.Format
	usage   vk.ImageUsageFlagBits
	layers  uint32
	mips    uint32
	samples vk.SampleCountFlagBits
}

// Pool is the top-level cache of reusable GPU objects. Queues are
// created lazily on first request and only emptied through Drain or
// Release, never by per-frame lease returns.
type Pool struct {
	dev     *driver.Device
	shaders *shader.Collection

	cmdPools  map[uint32]*idleQueue[*driver.CommandPool]
	computes  map[ComputeMode]*idleQueue[*driver.Compute]
	data      map[vk.BufferUsageFlagBits]*idleQueue[*driver.Buffer]
	descPools map[descPoolKey]*idleQueue[*driver.DescriptorPool]
	fences    idleQueue[*driver.Fence]
	graphics  map[graphicsKey]*idleQueue[*driver.Graphics]
	memories  map[memoryKey]*idleQueue[*driver.Memory]
	textures  map[textureKey]*idleQueue[*driver.Texture]

	renderPasses map[RenderPassMode]vk.RenderPass

	// LRUThreshold is the number of frames which must elapse before a
	// least-recently-used cache item is considered obsolete. Higher
	// numbers use more memory but thrash less than lower ones.
	LRUThreshold uint64

	frame uint64
}

// New creates an empty pool over the given device. Pipeline
// construction resolves SPIR-V modules from shaders.
func New(dev *driver.Device, shaders *shader.Collection) *Pool {
	return &Pool{
		dev:          dev,
		shaders:      shaders,
		cmdPools:     make(map[uint32]*idleQueue[*driver.CommandPool]),
		computes:     make(map[ComputeMode]*idleQueue[*driver.Compute]),
		data:         make(map[vk.BufferUsageFlagBits]*idleQueue[*driver.Buffer]),
		descPools:    make(map[descPoolKey]*idleQueue[*driver.DescriptorPool]),
		graphics:     make(map[graphicsKey]*idleQueue[*driver.Graphics]),
		memories:     make(map[memoryKey]*idleQueue[*driver.Memory]),
		textures:     make(map[textureKey]*idleQueue[*driver.Texture]),
		renderPasses: make(map[RenderPassMode]vk.RenderPass),
		LRUThreshold: DefaultLRUThreshold,
	}
}

// NextFrame advances the pool's frame clock. Call once per frame;
// Drain ages idle items against this clock.
func (p *Pool) NextFrame() {
	p.frame++
}

// Frame returns the current frame number.
func (p *Pool) Frame() uint64 {
	return p.frame
}

func lookup[K comparable, T any](m map[K]*idleQueue[T], key K) *idleQueue[T] {
	queue := m[key]
	if queue == nil {
		queue = &idleQueue[T]{}
		m[key] = queue
	}
	return queue
}

// CmdPool leases a command pool for the given queue family. Recycled
// pools are reset before they are returned, recorded commands never
// leak across frames.
func (p *Pool) CmdPool(family uint32) (*Lease[*driver.CommandPool], error) {
	items := lookup(p.cmdPools, family)
	item, ok := items.popBack()
	if !ok {
		var err error
		item, err = driver.NewCommandPool(p.dev, family)
		if err != nil {
			return nil, err
		}
	}
	if err := item.Reset(); err != nil {
		item.Release()
		return nil, err
	}
	return newLease(item, items, &p.frame), nil
}

// Fence leases a fence in the unsignaled state.
func (p *Pool) Fence() (*Lease[*driver.Fence], error) {
	item, ok := p.fences.popBack()
	if ok {
		if err := item.Reset(); err != nil {
			item.Release()
			return nil, err
		}
	} else {
		var err error
		item, err = driver.NewFence(p.dev, false)
		if err != nil {
			return nil, err
		}
	}
	return newLease(item, &p.fences, &p.frame), nil
}

// DescPool leases a descriptor pool able to hold at least maxSets sets
// of the given pool sizes. Size ranges are sorted before keying so
// different orders of the same ranges share a queue.
func (p *Pool) DescPool(maxSets uint32, sizes []vk.DescriptorPoolSize) (*Lease[*driver.DescriptorPool], error) {
	sorted := sortedSizes(sizes)

	items := lookup(p.descPools, descKey(sorted))
	item, ok := items.removeLastBy(func(pool *driver.DescriptorPool) bool {
		return pool.MaxSets() >= maxSets
	})
	if !ok {
		var err error
		item, err = driver.NewDescriptorPool(p.dev, maxSets, sorted)
		if err != nil {
			return nil, err
		}
	}
	return newLease(item, items, &p.frame), nil
}

func sortedSizes(sizes []vk.DescriptorPoolSize) []vk.DescriptorPoolSize {
	sorted := make([]vk.DescriptorPoolSize, len(sizes))
	copy(sorted, sizes)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Type != sorted[j].Type {
			return sorted[i].Type < sorted[j].Type
		}
		return sorted[i].DescriptorCount < sorted[j].DescriptorCount
	})
	return sorted
}

func descKey(sorted []vk.DescriptorPoolSize) descPoolKey {
	key := ""
	for _, size := range sorted {
		key += fmt.Sprintf("%d:%d,", size.Type, size.DescriptorCount)
	}
	return descPoolKey(key)
}

// Compute leases a compute pipeline for the given mode.
func (p *Pool) Compute(mode ComputeMode) (*Lease[*driver.Compute], error) {
	return p.ComputeSets(mode, 1)
}

// ComputeSets leases a compute pipeline whose descriptor pool holds at
// least maxSets sets.
func (p *Pool) ComputeSets(mode ComputeMode, maxSets uint32) (*Lease[*driver.Compute], error) {
	items := lookup(p.computes, mode)
	item, ok := items.removeLastBy(func(c *driver.Compute) bool {
		return c.MaxSets() >= maxSets
	})
	if !ok {
		log.Debugf("creating compute pipeline for mode %d", mode)
		var err error
		item, err = p.buildCompute(mode, maxSets)
		if err != nil {
			return nil, err
		}
	}
	return newLease(item, items, &p.frame), nil
}

// Graphics leases a graphics pipeline for the given mode, render pass
// mode and subpass.
func (p *Pool) Graphics(mode GraphicsMode, passMode RenderPassMode, subpass uint32) (*Lease[*driver.Graphics], error) {
	return p.GraphicsSets(mode, passMode, subpass, 1)
}

// GraphicsSets leases a graphics pipeline whose descriptor pool holds
// at least maxSets sets. The render pass is resolved through the
// registry first; pipeline keys require it to exist.
func (p *Pool) GraphicsSets(mode GraphicsMode, passMode RenderPassMode, subpass, maxSets uint32) (*Lease[*driver.Graphics], error) {
	pass, err := p.RenderPass(passMode)
	if err != nil {
		return nil, err
	}

	items := lookup(p.graphics, graphicsKey{mode: mode, passMode: passMode, subpass: subpass})
	item, ok := items.removeLastBy(func(g *driver.Graphics) bool {
		return g.MaxSets() >= maxSets
	})
	if !ok {
		log.Debugf("creating graphics pipeline for mode %d", mode)
		item, err = p.buildGraphics(mode, pass, subpass, maxSets)
		if err != nil {
			return nil, err
		}
	}
	return newLease(item, items, &p.frame), nil
}

// Memory leases a device memory block of at least size bytes from the
// given memory type. Blocks are bucketed by power-of-two size class so
// a reused block always satisfies the request.
func (p *Pool) Memory(typeIndex uint32, size uint64) (*Lease[*driver.Memory], error) {
	class := sizeClass(size)
	items := lookup(p.memories, memoryKey{typeIndex: typeIndex, class: class})
	item, ok := items.removeLastBy(func(m *driver.Memory) bool {
		return m.Size() >= size
	})
	if !ok {
		var err error
		item, err = p.dev.Alloc().Alloc(typeIndex, uint64(1)<<class)
		if err != nil {
			return nil, err
		}
	}
	return newLease(item, items, &p.frame), nil
}

// sizeClass buckets a size into the exponent of the next power of two.
func sizeClass(size uint64) uint32 {
	if size <= 1 {
		return 0
	}
	return uint32(bits.Len64(size - 1))
}

// Data leases a generic data buffer with capacity for at least length
// bytes.
func (p *Pool) Data(length uint64) (*Lease[*driver.Buffer], error) {
	return p.DataUsage(length, vk.BufferUsageTransferSrcBit|vk.BufferUsageTransferDstBit)
}

// DataUsage leases a data buffer with the given usage flags and
// capacity for at least length bytes.
func (p *Pool) DataUsage(length uint64, usage vk.BufferUsageFlagBits) (*Lease[*driver.Buffer], error) {
	items := lookup(p.data, usage)
	item, ok := items.removeLastBy(func(b *driver.Buffer) bool {
		return b.Capacity() >= length
	})
	if !ok {
		var err error
		item, err = driver.NewBuffer(p.dev, length, usage)
		if err != nil {
			return nil, err
		}
	}
	return newLease(item, items, &p.frame), nil
}

// Texture leases a 2D texture whose creation parameters match info
// exactly. A cache miss seeds the queue with one extra idle instance so
// the next identical request finds a warm spare.
func (p *Pool) Texture(info driver.TextureInfo) (*Lease[*driver.Texture], error) {
	items := lookup(p.textures, textureKey{
		dims:    info.Dims,
		format:  info.Format,
		usage:   info.Usage,
		layers:  info.Layers,
		mips:    info.Mips,
		samples: info.Samples,
	})
	item, ok := items.popBack()
	if !ok {
		spare, err := driver.NewTexture(p.dev, info)
		if err != nil {
			return nil, err
		}
		items.pushFront(spare, p.frame)

		item, err = driver.NewTexture(p.dev, info)
		if err != nil {
			return nil, err
		}
	}
	return newLease(item, items, &p.frame), nil
}

// RenderPass resolves the memoized render pass for a mode, building it
// on first use. Passes have no per-frame state and are never evicted.
func (p *Pool) RenderPass(mode RenderPassMode) (vk.RenderPass, error) {
	if pass, ok := p.renderPasses[mode]; ok {
		return pass, nil
	}
	pass, err := buildRenderPass(p.dev, mode)
	if err != nil {
		return nil, err
	}
	p.renderPasses[mode] = pass
	return pass, nil
}

// Drain removes idle objects whose disuse exceeds LRUThreshold frames
// and returns them; the caller owns their destruction. Leased objects
// and memoized render passes are never touched.
func (p *Pool) Drain() []gfx.Releasable {
	var stale []gfx.Releasable
	for _, items := range p.cmdPools {
		stale = appendStale(stale, items, p.frame, p.LRUThreshold)
	}
	for _, items := range p.computes {
		stale = appendStale(stale, items, p.frame, p.LRUThreshold)
	}
	for _, items := range p.data {
		stale = appendStale(stale, items, p.frame, p.LRUThreshold)
	}
	for _, items := range p.descPools {
		stale = appendStale(stale, items, p.frame, p.LRUThreshold)
	}
	stale = appendStale(stale, &p.fences, p.frame, p.LRUThreshold)
	for _, items := range p.graphics {
		stale = appendStale(stale, items, p.frame, p.LRUThreshold)
	}
	for _, items := range p.memories {
		stale = appendStale(stale, items, p.frame, p.LRUThreshold)
	}
	for _, items := range p.textures {
		stale = appendStale(stale, items, p.frame, p.LRUThreshold)
	}
	if len(stale) > 0 {
		log.Debugf("drained %d idle objects", len(stale))
	}
	return stale
}

func appendStale[T gfx.Releasable](dst []gfx.Releasable, q *idleQueue[T], frame, threshold uint64) []gfx.Releasable {
	for _, item := range q.drainStale(frame, threshold) {
		dst = append(dst, item)
	}
	return dst
}

// Release destroys every idle object and memoized render pass. Leases
// still out when the pool is torn down are a logic error.
func (p *Pool) Release() {
	count := 0
	for _, items := range p.cmdPools {
		count += releaseAll(items)
	}
	for _, items := range p.computes {
		count += releaseAll(items)
	}
	for _, items := range p.data {
		count += releaseAll(items)
	}
	for _, items := range p.descPools {
		count += releaseAll(items)
	}
	count += releaseAll(&p.fences)
	for _, items := range p.graphics {
		count += releaseAll(items)
	}
	for _, items := range p.memories {
		count += releaseAll(items)
	}
	for _, items := range p.textures {
		count += releaseAll(items)
	}
	for mode, pass := range p.renderPasses {
		vk.DestroyRenderPass(p.dev.Handle(), pass, nil)
		delete(p.renderPasses, mode)
	}
	log.Debugf("released %d pooled objects", count)
}

func releaseAll[T gfx.Releasable](q *idleQueue[T]) int {
	items := q.drainAll()
	for _, item := range items {
		item.Release()
	}
	return len(items)
}
