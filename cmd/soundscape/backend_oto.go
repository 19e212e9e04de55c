package main

import (
	"github.com/ao-soundscape/engine/sinks"
	"github.com/ao-soundscape/engine/sinks/oto"
)

func init() {
	registerBackend("oto", func(device, outPath string) (sinks.Sink, error) {
		return oto.New(), nil
	})
}
