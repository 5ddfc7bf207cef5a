// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package driver

import (
	"fmt"

	vk "github.com/devblok/vulkan"
	log "github.com/sirupsen/logrus"
)

// DescriptorPool owns a fixed-capacity allocator for descriptor sets.
// Capacity is declared up front; allocations past it fail instead of
// panicking, with the pool left untouched.
type DescriptorPool struct {
	device    vk.Device
	pool      vk.DescriptorPool
	maxSets   uint32
	allocated uint32
	sizes     []vk.DescriptorPoolSize
}

// NewDescriptorPool creates a descriptor pool with room for maxSets sets
// drawn from the given pool sizes. Sets free themselves individually.
func NewDescriptorPool(dev *Device, maxSets uint32, sizes []vk.DescriptorPoolSize) (*DescriptorPool, error) {
	dpci := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		Flags:         vk.DescriptorPoolCreateFlags(vk.DescriptorPoolCreateFreeDescriptorSetBit),
		MaxSets:       maxSets,
		PoolSizeCount: uint32(len(sizes)),
		PPoolSizes:    sizes,
	}

	var pool vk.DescriptorPool
	if err := check("vk.CreateDescriptorPool()", Unsupported, vk.CreateDescriptorPool(dev.Handle(), &dpci, nil, &pool)); err != nil {
		return nil, err
	}
	return &DescriptorPool{
		device:  dev.Handle(),
		pool:    pool,
		maxSets: maxSets,
		sizes:   sizes,
	}, nil
}

// Handle returns the vulkan descriptor pool handle.
func (p *DescriptorPool) Handle() vk.DescriptorPool {
	return p.pool
}

// MaxSets returns the declared set capacity.
func (p *DescriptorPool) MaxSets() uint32 {
	return p.maxSets
}

// Allocated returns how many sets are currently live.
func (p *DescriptorPool) Allocated() uint32 {
	return p.allocated
}

// Sizes returns the pool size ranges the pool was declared with.
func (p *DescriptorPool) Sizes() []vk.DescriptorPoolSize {
	return p.sizes
}

// reserve fails when count more sets would exceed the declared capacity.
func (p *DescriptorPool) reserve(count uint32) error {
	if p.allocated+count > p.maxSets {
		return &Error{
			Op:   "driver.DescriptorPool.AllocateSets()",
			Kind: Unsupported,
			Err:  fmt.Errorf("pool exhausted: %d of %d sets allocated, %d requested", p.allocated, p.maxSets, count),
		}
	}
	return nil
}

// AllocateSets returns count sets of the given layout. Each set holds a
// reference back to the pool, which therefore outlives all of its sets.
func (p *DescriptorPool) AllocateSets(layout vk.DescriptorSetLayout, count uint32) ([]*DescriptorSet, error) {
	if err := p.reserve(count); err != nil {
		return nil, err
	}

	layouts := make([]vk.DescriptorSetLayout, count)
	for idx := range layouts {
		layouts[idx] = layout
	}
	dsai := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     p.pool,
		DescriptorSetCount: count,
		PSetLayouts:        layouts,
	}

	log.Trace("allocating descriptor sets")

	raw := make([]vk.DescriptorSet, count)
	if err := check("vk.AllocateDescriptorSets()", Unsupported, vk.AllocateDescriptorSets(p.device, &dsai, &raw[0])); err != nil {
		return nil, err
	}
	p.allocated += count

	sets := make([]*DescriptorSet, count)
	for idx, set := range raw {
		sets[idx] = &DescriptorSet{pool: p, set: set}
	}
	return sets, nil
}

// AllocateSet returns a single set of the given layout.
func (p *DescriptorPool) AllocateSet(layout vk.DescriptorSetLayout) (*DescriptorSet, error) {
	sets, err := p.AllocateSets(layout, 1)
	if err != nil {
		return nil, err
	}
	return sets[0], nil
}

// Release destroys the descriptor pool. Sets still allocated from it are
// invalidated along with it, so release them first.
func (p *DescriptorPool) Release() {
	if p.allocated > 0 {
		log.Warnf("destroying descriptor pool with %d sets still allocated", p.allocated)
	}
	vk.DestroyDescriptorPool(p.device, p.pool, nil)
}

// DescriptorSet is one binding table allocated from a DescriptorPool.
// It does not own its pool; the back-reference keeps the pool alive for
// at least as long as the set.
type DescriptorSet struct {
	pool *DescriptorPool
	set  vk.DescriptorSet
}

// Handle returns the vulkan descriptor set handle.
func (s *DescriptorSet) Handle() vk.DescriptorSet {
	return s.set
}

// Release frees the set from its pool. Failures are logged and
// swallowed, teardown has no recovery path.
func (s *DescriptorSet) Release() {
	if err := check("vk.FreeDescriptorSets()", InvalidData,
		vk.FreeDescriptorSets(s.pool.device, s.pool.pool, 1, &s.set)); err != nil {
		log.Warn("unable to free descriptor set")
		return
	}
	s.pool.allocated--
}
