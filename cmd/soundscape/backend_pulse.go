//go:build linux

package main

import (
	"github.com/ao-soundscape/engine/sinks"
	"github.com/ao-soundscape/engine/sinks/pulse"
)

func init() {
	registerBackend("pulse", func(device, outPath string) (sinks.Sink, error) {
		return pulse.New(), nil
	})
}
