package api

import (
	"errors"
	"io"

	"github.com/charmbracelet/log"
	lua "github.com/yuin/gopher-lua"

	plua "github.com/dshills/cadence/internal/plugin/lua"
)

// callbacks runs Lua functions on behalf of the host and swallows their
// errors after logging them.
type callbacks struct {
	rt        Runtime
	logger    *log.Logger
	extension string
}

func newCallbacks(rt Runtime, logger *log.Logger, extension string) *callbacks {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &callbacks{
		rt:        rt,
		logger:    logger.With("extension", extension),
		extension: extension,
	}
}

// call invokes fn. what names the callback in log output.
func (c *callbacks) call(what string, fn *lua.LFunction, args ...lua.LValue) {
	if fn == nil {
		return
	}
	if _, err := c.rt.Invoke(fn, args...); err != nil {
		if errors.Is(err, plua.ErrStateClosed) {
			c.logger.Debug("callback dropped, extension unloaded", "callback", what)
			return
		}
		c.logger.Error("callback failed", "callback", what, "err", err)
	}
}

// goFunc wraps fn as a Go closure. A nil fn yields a nil closure.
func (c *callbacks) goFunc(what string, fn *lua.LFunction) func() {
	if fn == nil {
		return nil
	}
	return func() { c.call(what, fn) }
}
