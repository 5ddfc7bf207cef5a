// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package driver

import (
	"errors"
	"testing"
)

func TestReserveWithinCapacity(t *testing.T) {
	pool := &DescriptorPool{maxSets: 4, allocated: 2}
	if err := pool.reserve(2); err != nil {
		t.Errorf("filling the pool exactly must succeed, got %v", err)
	}
}

func TestReserveExhausted(t *testing.T) {
	pool := &DescriptorPool{maxSets: 4, allocated: 3}
	err := pool.reserve(2)
	if err == nil {
		t.Fatal("over-allocating must fail")
	}

	var driverErr *Error
	if !errors.As(err, &driverErr) {
		t.Fatalf("expected a driver error, got %T", err)
	}
	if driverErr.Kind != Unsupported {
		t.Errorf("pool exhaustion is an unsupported request, got kind %v", driverErr.Kind)
	}
}

func TestReserveDoesNotMutate(t *testing.T) {
	pool := &DescriptorPool{maxSets: 2}
	if err := pool.reserve(1); err != nil {
		t.Fatal(err)
	}
	if pool.allocated != 0 {
		t.Error("reserve only checks capacity, allocation happens on success")
	}
}
