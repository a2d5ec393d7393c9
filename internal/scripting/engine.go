package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for monster behavior scripts.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	if err := e.loadDir(filepath.Join(scriptsDir, "ai")); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load ai scripts: %w", err)
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// WanderContext holds pre-packed data for a wander decision. Go detects and
// ranges; Lua only picks a heading and how long to hold it.
type WanderContext struct {
	MonsterID  string
	Archetype  string
	X, Z       float64
	DirX, DirZ float64 // current wander heading
	DistCenter float64 // planar distance from arena center
	SafeRadius float64
	Lost       bool // true in LOST, false in IDLE
	HeadingAge int  // ms since the current heading was chosen
}

// WanderCommand is a heading decision returned by Lua.
type WanderCommand struct {
	DirX, DirZ float64
	HoldMS     int // how long to keep this heading
}

// RunWander calls the Lua monster_wander function. A nil return means no
// script is loaded or it errored; the caller falls back to its built-in
// wander.
func (e *Engine) RunWander(ctx WanderContext) *WanderCommand {
	fn := e.vm.GetGlobal("monster_wander")
	if fn == lua.LNil {
		return nil
	}

	t := e.vm.NewTable()
	t.RawSetString("id", lua.LString(ctx.MonsterID))
	t.RawSetString("archetype", lua.LString(ctx.Archetype))
	t.RawSetString("x", lua.LNumber(ctx.X))
	t.RawSetString("z", lua.LNumber(ctx.Z))
	t.RawSetString("dir_x", lua.LNumber(ctx.DirX))
	t.RawSetString("dir_z", lua.LNumber(ctx.DirZ))
	t.RawSetString("dist_center", lua.LNumber(ctx.DistCenter))
	t.RawSetString("safe_radius", lua.LNumber(ctx.SafeRadius))
	if ctx.Lost {
		t.RawSetString("lost", lua.LTrue)
	} else {
		t.RawSetString("lost", lua.LFalse)
	}
	t.RawSetString("heading_age", lua.LNumber(ctx.HeadingAge))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua monster_wander error", zap.Error(err), zap.String("monster", ctx.MonsterID))
		return nil
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	if result == lua.LNil {
		return nil
	}
	rt, ok := result.(*lua.LTable)
	if !ok {
		e.log.Error("lua monster_wander returned non-table")
		return nil
	}

	cmd := &WanderCommand{
		DirX:   lFloat(rt, "dir_x"),
		DirZ:   lFloat(rt, "dir_z"),
		HoldMS: lInt(rt, "hold_ms"),
	}
	if cmd.HoldMS <= 0 {
		cmd.HoldMS = 1000
	}
	return cmd
}

// lFloat reads a number field from a Lua table.
func lFloat(t *lua.LTable, key string) float64 {
	return float64(lua.LVAsNumber(t.RawGetString(key)))
}

// lInt reads an integer field from a Lua table.
func lInt(t *lua.LTable, key string) int {
	return int(lua.LVAsNumber(t.RawGetString(key)))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
