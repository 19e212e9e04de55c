package agent

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/ao-soundscape/engine/channel"
)

// registerAPI installs the `boodler` table a script uses to schedule
// notes and mutate channels — the concrete surface behind spec §9's
// abstract "embedding language" and "scheduler of agents".
func (s *Session) registerAPI() {
	mod := s.L.NewTable()
	s.L.SetGlobal("boodler", mod)

	s.L.SetField(mod, "schedule", s.L.NewFunction(s.luaSchedule))
	s.L.SetField(mod, "setvolume", s.L.NewFunction(s.luaSetVolume))
	s.L.SetField(mod, "setstereo", s.L.NewFunction(s.luaSetStereo))
	s.L.SetField(mod, "reparent", s.L.NewFunction(s.luaReparent))
	s.L.SetField(mod, "destroy_channel", s.L.NewFunction(s.luaDestroyChannel))
	s.L.SetField(mod, "adjust_timebase", s.L.NewFunction(s.luaAdjustTimebase))
}

// luaSchedule: boodler.schedule(sample, pitch, volume, sx, shx, sy, shy, start_time, reps, channel)
func (s *Session) luaSchedule(L *lua.LState) int {
	smpName := L.CheckString(1)
	pitch := L.CheckNumber(2)
	volume := L.CheckNumber(3)
	pan := channel.Pan{
		ScaleX: float64(L.CheckNumber(4)),
		ShiftX: float64(L.CheckNumber(5)),
		ScaleY: float64(L.CheckNumber(6)),
		ShiftY: float64(L.CheckNumber(7)),
	}
	startTime := int64(L.CheckNumber(8))
	reps := L.OptInt(9, 1)
	chName := L.OptString(10, "")

	smp, ok := s.samples[smpName]
	if !ok {
		L.ArgError(1, "unknown sample: "+smpName)
		return 0
	}
	var ch channel.Channel
	if chName != "" {
		ch = s.Channel(chName)
	}

	s.mixer.CreateNote(smp, float64(pitch), float64(volume), pan, startTime, reps, ch, nil)
	return 0
}

// luaSetVolume: boodler.setvolume(channel, t0, t1, v0, v1)
func (s *Session) luaSetVolume(L *lua.LState) int {
	ch := s.Channel(L.CheckString(1))
	ch.SetVolume(channel.VolumeWindow{
		T0: int64(L.CheckNumber(2)), T1: int64(L.CheckNumber(3)),
		V0: float64(L.CheckNumber(4)), V1: float64(L.CheckNumber(5)),
	})
	return 0
}

// luaSetStereo: boodler.setstereo(channel, t0, t1, sx0,shx0,sy0,shy0, sx1,shx1,sy1,shy1)
func (s *Session) luaSetStereo(L *lua.LState) int {
	ch := s.Channel(L.CheckString(1))
	ch.SetStereo(channel.StereoWindow{
		T0: int64(L.CheckNumber(2)), T1: int64(L.CheckNumber(3)),
		Pan0: channel.Pan{
			ScaleX: float64(L.CheckNumber(4)), ShiftX: float64(L.CheckNumber(5)),
			ScaleY: float64(L.CheckNumber(6)), ShiftY: float64(L.CheckNumber(7)),
		},
		Pan1: channel.Pan{
			ScaleX: float64(L.CheckNumber(8)), ShiftX: float64(L.CheckNumber(9)),
			ScaleY: float64(L.CheckNumber(10)), ShiftY: float64(L.CheckNumber(11)),
		},
	})
	return 0
}

// luaReparent: boodler.reparent(child, parent)
func (s *Session) luaReparent(L *lua.LState) int {
	child := s.Channel(L.CheckString(1))
	parentName := L.OptString(2, "")
	if parentName == "" {
		child.SetParent(nil)
		return 0
	}
	child.SetParent(s.Channel(parentName))
	return 0
}

// luaDestroyChannel: boodler.destroy_channel(channel) — cascade-kills
// every note on the named channel's subtree (spec §4.1/§6).
func (s *Session) luaDestroyChannel(L *lua.LState) int {
	ch := s.Channel(L.CheckString(1))
	n := s.mixer.DestroyNotesByChannel(ch)
	L.Push(lua.LNumber(n))
	return 1
}

// luaAdjustTimebase: boodler.adjust_timebase(offset)
func (s *Session) luaAdjustTimebase(L *lua.LState) int {
	s.mixer.AdjustTimebase(int64(L.CheckNumber(1)))
	return 0
}
