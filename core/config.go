// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"strconv"

	"github.com/gobuffalo/envy"
)

// Configuration defines a global engine configuration setting
type Configuration struct {
	Time     TimeConfiguration
	Renderer RendererConfiguration
	Pool     PoolConfiguration
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// FramesPerSecond caps frames per second that is put out.
	// To unlimit, set to 0
	FramesPerSecond int

	// EventPollDelay is the interval between event polls
	// in milliseconds
	EventPollDelay int
}

// RendererConfiguration is used to configure the renderer
type RendererConfiguration struct {
	SwapchainSize    uint32
	DeviceExtensions []string

	ScreenWidth  uint32
	ScreenHeight uint32

	ShaderDirectory string
	ShaderArchive   string
}

// PoolConfiguration is used to configure the gpu object pool
type PoolConfiguration struct {
	// LRUThreshold is the number of frames an object may sit
	// idle before a drain pass considers it obsolete
	LRUThreshold uint64
}

// ConfigurationFromEnv assembles a Configuration from environment
// variables, falling back to usable defaults. A .env file in the
// working directory is picked up automatically.
func ConfigurationFromEnv() Configuration {
	return Configuration{
		Time: TimeConfiguration{
			FramesPerSecond: envInt("KAGE_FPS", 2000),
			EventPollDelay:  envInt("KAGE_EVENT_POLL_MS", 50),
		},
		Renderer: RendererConfiguration{
			SwapchainSize:   uint32(envInt("KAGE_SWAPCHAIN_SIZE", 3)),
			ScreenWidth:     uint32(envInt("KAGE_SCREEN_WIDTH", 800)),
			ScreenHeight:    uint32(envInt("KAGE_SCREEN_HEIGHT", 600)),
			ShaderDirectory: envy.Get("KAGE_SHADER_DIR", "./shaders"),
			ShaderArchive:   envy.Get("KAGE_SHADER_ARCHIVE", ""),
			DeviceExtensions: []string{
				"VK_KHR_swapchain",
			},
		},
		Pool: PoolConfiguration{
			LRUThreshold: uint64(envInt("KAGE_LRU_THRESHOLD", 8)),
		},
	}
}

func envInt(key string, fallback int) int {
	value, err := strconv.Atoi(envy.Get(key, strconv.Itoa(fallback)))
	if err != nil {
		return fallback
	}
	return value
}
