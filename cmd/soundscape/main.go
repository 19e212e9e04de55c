// Command soundscape drives one mixer session: it loads a Lua agent
// script, picks an audio sink by name, and runs the tick/mix/write loop
// until the script stops it or an unrecoverable error occurs. Sample
// decoding is out of scope for the core (spec §1), so this driver seeds
// a couple of synthesized demo waveforms for the script to schedule;
// a real deployment would load decoded samples from its own asset
// pipeline and call Session.RegisterSample itself.
package main

import (
	"flag"
	"log"
	"math"
	"os"
	"strconv"

	"github.com/ao-soundscape/engine/agent"
	"github.com/ao-soundscape/engine/mixer"
	"github.com/ao-soundscape/engine/sample"
	"github.com/ao-soundscape/engine/sinks"
	"github.com/ao-soundscape/engine/sinks/file"
	"github.com/ao-soundscape/engine/sinks/headless"
)

// backendFactories maps a -backend name to a constructor. headless and
// file are always available; platform-specific backends register
// themselves from build-tag-gated files in this package (oto, alsa,
// pulse, opus), mirroring the teacher's own practice of selecting
// between build-tag-gated sibling files in the same package rather than
// a runtime plugin mechanism.
var backendFactories = map[string]func(device, outPath string) (sinks.Sink, error){
	"headless": func(device, outPath string) (sinks.Sink, error) { return headless.New(), nil },
	"file":     func(device, outPath string) (sinks.Sink, error) { return file.New(outPath), nil },
}

func registerBackend(name string, factory func(device, outPath string) (sinks.Sink, error)) {
	backendFactories[name] = factory
}

func main() {
	var (
		backend    = flag.String("backend", "headless", "sink backend: headless, file, oto, alsa, pulse, opus")
		device     = flag.String("device", "", "device name (backend-specific)")
		scriptPath = flag.String("script", "", "path to a Lua agent script")
		rate       = flag.Int("rate", 44100, "sample rate")
		bufsize    = flag.Int("buffersize", 1024, "frames per buffer")
		outPath    = flag.String("out", "out.pcm", "output path for the file/opus backends")
		fixedPoint = flag.Bool("fixed", false, "use the fixed-point mixer inner loop")
	)
	flag.Parse()

	if *scriptPath == "" {
		log.Fatalf("soundscape: -script is required")
	}
	scriptBytes, err := os.ReadFile(*scriptPath)
	if err != nil {
		log.Fatalf("soundscape: reading script: %v", err)
	}

	m := mixer.New(*bufsize, *fixedPoint)

	sess, err := agent.New(m, string(scriptBytes))
	if err != nil {
		log.Fatalf("soundscape: %v", err)
	}
	defer sess.Close()
	seedDemoSamples(sess)

	sink, err := openSink(*backend, *device, *outPath)
	if err != nil {
		log.Fatalf("soundscape: %v", err)
	}
	if err := sink.Init(*device, *rate, sinks.Options{"buffersize": strconv.Itoa(*bufsize)}); err != nil {
		log.Fatalf("soundscape: init %s: %v", *backend, err)
	}
	defer sink.Close()

	m.FramesPerBuffer = sink.FramesPerBuffer()

	if err := sink.Run(m, sess.Tick); err != nil {
		log.Fatalf("soundscape: run: %v", err)
	}
}

func openSink(backend, device, outPath string) (sinks.Sink, error) {
	factory, ok := backendFactories[backend]
	if !ok {
		log.Printf("soundscape: backend %q not compiled into this binary; falling back to headless", backend)
		factory = backendFactories["headless"]
	}
	return factory(device, outPath)
}

// seedDemoSamples registers two tiny synthesized PCM samples ("tone" and
// "blip") so a script has something to schedule without needing a real
// asset pipeline wired in.
func seedDemoSamples(sess *agent.Session) {
	sess.RegisterSample("tone", synthTone(440, 44100, 1.0))
	sess.RegisterSample("blip", synthTone(880, 44100, 0.1))
}

func synthTone(freqHz float64, sampleRate int, seconds float64) *sample.Sample {
	n := int(float64(sampleRate) * seconds)
	data := make([]int16, n)
	for i := range data {
		phase := 2 * math.Pi * freqHz * float64(i) / float64(sampleRate)
		data[i] = int16(0.5 * 32767 * math.Sin(phase))
	}
	s, err := sample.New(data, 1, 1.0, -1, -1)
	if err != nil {
		return sample.Failed()
	}
	return s
}

