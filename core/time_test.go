// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"testing"
	"time"

	"github.com/devblok/kage/core"
)

func TestTimeTickers(t *testing.T) {
	ts := core.NewTime(core.TimeConfiguration{
		FramesPerSecond: 1000,
		EventPollDelay:  1,
	})
	defer ts.Stop()

	if ts.Fps() != 1000 {
		t.Errorf("expected 1000 fps, got %d", ts.Fps())
	}

	select {
	case <-ts.FpsTicker().C:
	case <-time.After(time.Second):
		t.Error("fps ticker never fired")
	}

	select {
	case <-ts.EventTicker().C:
	case <-time.After(time.Second):
		t.Error("event ticker never fired")
	}
}

func TestTimeUnlimited(t *testing.T) {
	ts := core.NewTime(core.TimeConfiguration{
		FramesPerSecond: 0,
		EventPollDelay:  1,
	})
	defer ts.Stop()

	select {
	case <-ts.FpsTicker().C:
	case <-time.After(time.Second):
		t.Error("unlimited ticker should fire practically immediately")
	}
}
