// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/devblok/kage/core"
	"github.com/devblok/kage/driver"
	"github.com/devblok/kage/gpu"
	"github.com/devblok/kage/kar"
	"github.com/devblok/kage/shader"
	"github.com/gobuffalo/packr"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"
)

func init() {
	runtime.LockOSThread()
}

// Essential globals
var (
	vkInstance *core.Instance
	sdlWindow  *sdl.Window
	sdlSurface unsafe.Pointer

	frameCounter int64
)

// staticShaders are the built-in shaders used when no shader directory
// or archive is configured.
var staticShaders = packr.NewBox("./shaders")

// Profiling
var (
	cpuProfile = flag.String("cpuprof", "", "Profile CPU usage to file")
	memProfile = flag.String("memprof", "", "Profile memory usage into a file")
	debug      = flag.Bool("vkdbg", false, "Load Vulkan validation layers")
	verbose    = flag.Bool("v", false, "Verbose logging")
)

func newWindow(cfg core.RendererConfiguration) *sdl.Window {
	window, err := sdl.CreateWindow("Kage",
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(cfg.ScreenWidth),
		int32(cfg.ScreenHeight),
		sdl.WINDOW_VULKAN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		panic(err)
	}
	return window
}

func loadShaders(collection *shader.Collection, cfg core.RendererConfiguration) error {
	if cfg.ShaderArchive != "" {
		f, err := os.Open(cfg.ShaderArchive)
		if err != nil {
			return err
		}
		defer f.Close()
		archive, err := kar.Open(f)
		if err != nil {
			return err
		}
		return collection.LoadArchive(archive)
	}
	if err := collection.LoadDirectory(cfg.ShaderDirectory); err == nil {
		return nil
	}
	for _, name := range staticShaders.List() {
		if !strings.HasSuffix(name, ".spv") {
			continue
		}
		code, err := staticShaders.Find(name)
		if err != nil {
			return err
		}
		if err := collection.Add(strings.TrimSuffix(name, ".spv"), code); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file loaded")
	}
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			panic(err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			panic(err)
		}
		defer pprof.StopCPUProfile()
	}

	configuration := core.ConfigurationFromEnv()

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		panic(err)
	}
	defer sdl.Quit()

	if err := sdl.VulkanLoadLibrary(""); err != nil {
		panic(err)
	}
	defer sdl.VulkanUnloadLibrary()

	sdlWindow = newWindow(configuration.Renderer)

	{
		cfg := core.InstanceConfiguration{
			DebugMode:  *debug,
			Extensions: sdlWindow.VulkanGetInstanceExtensions(),
			Layers:     []string{},
		}

		vi, err := core.NewInstance(core.DefaultApplicationInfo, sdl.VulkanGetVkGetInstanceProcAddr(), cfg)
		if err != nil {
			panic(err)
		}
		vkInstance = vi
		defer vkInstance.Release()
	}

	if srf, err := sdlWindow.VulkanCreateSurface(vkInstance.Handle()); err != nil {
		panic(err)
	} else {
		sdlSurface = srf
		vkInstance.SetSurface(sdlSurface)
	}

	device, err := driver.NewDevice(vkInstance.AvailableDevices()[0], driver.DeviceConfig{
		Extensions: configuration.Renderer.DeviceExtensions,
	})
	if err != nil {
		panic(err)
	}
	defer device.Release()

	shaders := shader.NewCollection(device)
	if err := loadShaders(shaders, configuration.Renderer); err != nil {
		panic(err)
	}
	defer shaders.Release()

	pool := gpu.New(device, shaders)
	pool.LRUThreshold = configuration.Pool.LRUThreshold
	defer pool.Release()

	timeService := core.NewTime(configuration.Time)
	defer timeService.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	programSync := sync.WaitGroup{}

	/* Frame counter loop */
	programSync.Add(1)
	go func(ctx context.Context, wg *sync.WaitGroup) {
	CounterLoop:
		for {
			select {
			case <-ctx.Done():
				break CounterLoop
			default:
				currentCount := atomic.LoadInt64(&frameCounter)
				atomic.StoreInt64(&frameCounter, 0)
				fmt.Printf("\r\033[2KFrame count: %d\tCGO calls: %d", currentCount*5, runtime.NumCgoCall())
				time.Sleep(200 * time.Millisecond)
				// 200 ms * 5 = 1s, therefore we need to mutiply the count
			}
		}
		wg.Done()
	}(ctx, &programSync)

	/* Frame loop */
	programSync.Add(1)
	go func(ctx context.Context, wg *sync.WaitGroup) {
	DrawLoop:
		for {
			select {
			case <-ctx.Done():
				log.Info("frame loop exited")
				break DrawLoop
			case <-timeService.FpsTicker().C:
				if err := drawFrame(device, pool); err != nil {
					log.Errorf("frame error: %s", err.Error())
					if driver.IsDeviceLost(err) {
						cancel()
					}
				}
				atomic.AddInt64(&frameCounter, 1)
			}
		}
		wg.Done()
	}(ctx, &programSync)

	/* Event loop */
EventLoop:
	for {
		select {
		case <-ctx.Done():
			break EventLoop
		case <-timeService.EventTicker().C:
			var event sdl.Event
			for event = sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
				switch et := event.(type) {
				case *sdl.KeyboardEvent:
					if et.Keysym.Sym == sdl.K_ESCAPE {
						cancel()
						continue EventLoop
					}
				case *sdl.QuitEvent:
					cancel()
					continue EventLoop
				}
			}
		}
	}

	programSync.Wait()
	device.WaitIdle()

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			panic(err)
		}
		if err := pprof.WriteHeapProfile(f); err != nil {
			panic(err)
		}
	}
}

// drawFrame records and submits one frame's worth of work through the
// object pool, then reclaims everything the fence proved finished.
func drawFrame(device *driver.Device, pool *gpu.Pool) error {
	pool.NextFrame()

	cmdPool, err := pool.CmdPool(device.Family())
	if err != nil {
		return err
	}
	defer cmdPool.Release()

	buf, err := driver.NewCommandBuffer(device, device.Family())
	if err != nil {
		return err
	}
	defer buf.Release()

	staging, err := pool.Data(64 * 1024)
	if err != nil {
		return err
	}

	if err := buf.Begin(); err != nil {
		return err
	}
	if err := buf.End(); err != nil {
		return err
	}
	if err := buf.Submit(device.Queue()); err != nil {
		return err
	}

	if err := buf.WaitUntilExecuted(); err != nil {
		return err
	}
	buf.DropFenced()
	staging.Release()

	for _, stale := range pool.Drain() {
		stale.Release()
	}
	return nil
}
