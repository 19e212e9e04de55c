// Package agent wires a Lua virtual machine (github.com/yuin/gopher-lua,
// already a direct dependency of the teacher project) onto the mixer's
// tick callback and channel-tree boundary. Spec §9 treats "the
// embedding language that owns channel objects" and "the higher-level
// scheduler of agents" as pure external collaborators reached only
// through the Channel interface and a tick callback; this package gives
// that collaborator a concrete, testable home: a soundscape author
// writes a small Lua script that schedules notes and mutates channels,
// and Session.Tick adapts it into a mixer.TickFunc.
package agent

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/ao-soundscape/engine/channel"
	"github.com/ao-soundscape/engine/mixer"
	"github.com/ao-soundscape/engine/sample"
)

// Session owns one Lua VM bound to one Mixer, plus the named sample and
// channel registries a script's `boodler.*` calls resolve against.
type Session struct {
	L        *lua.LState
	mixer    *mixer.Mixer
	samples  map[string]*sample.Sample
	channels map[string]*channel.Node
}

// New loads script (Lua source) into a fresh VM bound to m. The script
// is expected to define a global `tick(current_time)` function; if it
// doesn't, Tick is a no-op that never stops the session.
func New(m *mixer.Mixer, script string) (*Session, error) {
	s := &Session{
		L:        lua.NewState(),
		mixer:    m,
		samples:  make(map[string]*sample.Sample),
		channels: make(map[string]*channel.Node),
	}
	s.registerAPI()
	if err := s.L.DoString(script); err != nil {
		s.L.Close()
		return nil, fmt.Errorf("agent: loading script: %w", err)
	}
	return s, nil
}

// RegisterSample makes smp available to the script under name, the first
// argument of boodler.schedule(name, ...).
func (s *Session) RegisterSample(name string, smp *sample.Sample) {
	s.samples[name] = smp
}

// Channel returns (creating if necessary) the named channel node, so Go
// callers can inspect or pre-seed channels a script will also reach by
// name through the channel arguments of the boodler.* calls.
func (s *Session) Channel(name string) *channel.Node {
	if ch, ok := s.channels[name]; ok {
		return ch
	}
	ch := channel.NewNode(name)
	s.channels[name] = ch
	return ch
}

// Close releases the Lua VM.
func (s *Session) Close() { s.L.Close() }

// Tick adapts the script's global `tick` function into a mixer.TickFunc:
// called once per buffer with the pre-buffer current_time, may schedule
// notes or mutate channels via the bound API, signals stop by returning
// true from Lua (any other return value, or none, continues), and
// signals a fatal error by erroring out of the call itself (spec §4.6,
// §6's fatal-tick-error contract).
func (s *Session) Tick(currentTime int64) (bool, error) {
	fn := s.L.GetGlobal("tick")
	if fn == lua.LNil {
		return false, nil
	}
	if err := s.L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LNumber(currentTime)); err != nil {
		return false, fmt.Errorf("agent: tick callback: %w", err)
	}
	ret := s.L.Get(-1)
	s.L.Pop(1)
	if b, ok := ret.(lua.LBool); ok {
		return bool(b), nil
	}
	return false, nil
}
