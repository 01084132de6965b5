package states

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/milk9111/statestack/prefabs"
)

const defaultScriptCacheSize = 32

// Scripts must define create(engine, state) and update(engine, state, elapsed).
const scriptDispatch = `
if __phase == "create" {
	create(__engine, __state)
} else if __phase == "update" {
	update(__engine, __state, __elapsed)
}
`

// ScriptCache keeps compiled scripts by path. Every caller gets its own clone
// so globals never leak between states.
type ScriptCache struct {
	compiled *lru.Cache[string, *tengo.Compiled]
}

func NewScriptCache(size int) *ScriptCache {
	if size <= 0 {
		size = defaultScriptCacheSize
	}
	c, err := lru.New[string, *tengo.Compiled](size)
	if err != nil {
		panic(fmt.Sprintf("states: script cache: %v", err))
	}
	return &ScriptCache{compiled: c}
}

// Get returns a private copy of the compiled script at path.
func (c *ScriptCache) Get(path string) (*tengo.Compiled, error) {
	key := strings.TrimSpace(path)
	if compiled, ok := c.compiled.Get(key); ok {
		return compiled.Clone(), nil
	}

	src, err := prefabs.LoadScript(key)
	if err != nil {
		return nil, fmt.Errorf("states: load script %s: %w", key, err)
	}
	compiled, err := compileScript(src)
	if err != nil {
		return nil, fmt.Errorf("states: compile script %s: %w", key, err)
	}
	c.compiled.Add(key, compiled)
	return compiled.Clone(), nil
}

func (c *ScriptCache) Len() int { return c.compiled.Len() }

// Purge drops every compiled script so the next Get reads from disk.
func (c *ScriptCache) Purge() { c.compiled.Purge() }

func compileScript(src []byte) (*tengo.Compiled, error) {
	script := tengo.NewScript(append(append([]byte{}, src...), scriptDispatch...))
	_ = script.Add("__phase", "")
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	_ = script.Add("__elapsed", 0.0)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	return script.Compile()
}
