// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"testing"

	"github.com/devblok/kage/core"
	"github.com/gobuffalo/envy"
)

func TestConfigurationDefaults(t *testing.T) {
	cfg := core.ConfigurationFromEnv()

	if cfg.Time.FramesPerSecond != 2000 {
		t.Errorf("default fps is 2000, got %d", cfg.Time.FramesPerSecond)
	}
	if cfg.Renderer.ScreenWidth != 800 || cfg.Renderer.ScreenHeight != 600 {
		t.Errorf("default screen is 800x600, got %dx%d",
			cfg.Renderer.ScreenWidth, cfg.Renderer.ScreenHeight)
	}
	if cfg.Pool.LRUThreshold != 8 {
		t.Errorf("default lru threshold is 8, got %d", cfg.Pool.LRUThreshold)
	}
}

func TestConfigurationFromEnvironment(t *testing.T) {
	envy.Temp(func() {
		envy.Set("KAGE_FPS", "60")
		envy.Set("KAGE_LRU_THRESHOLD", "16")
		envy.Set("KAGE_SHADER_DIR", "/opt/shaders")

		cfg := core.ConfigurationFromEnv()
		if cfg.Time.FramesPerSecond != 60 {
			t.Errorf("expected 60 fps, got %d", cfg.Time.FramesPerSecond)
		}
		if cfg.Pool.LRUThreshold != 16 {
			t.Errorf("expected threshold 16, got %d", cfg.Pool.LRUThreshold)
		}
		if cfg.Renderer.ShaderDirectory != "/opt/shaders" {
			t.Errorf("expected /opt/shaders, got %s", cfg.Renderer.ShaderDirectory)
		}
	})
}

func TestConfigurationRejectsGarbageNumbers(t *testing.T) {
	envy.Temp(func() {
		envy.Set("KAGE_FPS", "not a number")

		cfg := core.ConfigurationFromEnv()
		if cfg.Time.FramesPerSecond != 2000 {
			t.Errorf("garbage input falls back to the default, got %d", cfg.Time.FramesPerSecond)
		}
	})
}
