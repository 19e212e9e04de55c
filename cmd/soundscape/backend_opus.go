//go:build cgo

package main

import (
	"os"

	"github.com/ao-soundscape/engine/sinks"
	"github.com/ao-soundscape/engine/sinks/encoder"
)

func init() {
	registerBackend("opus", func(device, outPath string) (sinks.Sink, error) {
		f, err := os.Create(outPath)
		if err != nil {
			return nil, err
		}
		return encoder.New(f), nil
	})
}
