// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"encoding/json"
	"fmt"

	"github.com/devblok/kage/core"
)

func main() {
	cfg := core.InstanceConfiguration{
		DebugMode:  false,
		Extensions: []string{},
		Layers:     []string{},
	}

	instance, err := core.NewInstance(core.DefaultApplicationInfo, nil, cfg)
	if err != nil {
		panic(err)
	}
	defer instance.Release()

	bytes, err := json.Marshal(instance.PhysicalDevicesInfo())
	if err != nil {
		panic(err)
	}
	fmt.Printf("%s", bytes)
}
