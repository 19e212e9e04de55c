//go:build linux && cgo

package main

import (
	"github.com/ao-soundscape/engine/sinks"
	"github.com/ao-soundscape/engine/sinks/alsa"
)

func init() {
	registerBackend("alsa", func(device, outPath string) (sinks.Sink, error) {
		return alsa.New(device), nil
	})
}
