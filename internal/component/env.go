// internal/component/env.go
package component

import (
	"go.uber.org/zap"

	"github.com/yanizio/eventform/internal/config"
	"github.com/yanizio/eventform/internal/form"
	"github.com/yanizio/eventform/internal/session"
	"github.com/yanizio/eventform/internal/theme"
)

// Env exposes the shared services to Components during Init.
type Env interface {
	Config() *config.Config
	Sessions() *session.Registry
	CSRF() *form.CSRF
	Palette() theme.Palette
	Logger() *zap.SugaredLogger
}

// StaticEnv is the plain-struct Env used by cmd/web and tests.
type StaticEnv struct {
	Cfg   *config.Config
	Reg   *session.Registry
	Token *form.CSRF
	Pal   theme.Palette
	Log   *zap.SugaredLogger
}

func (e StaticEnv) Config() *config.Config      { return e.Cfg }
func (e StaticEnv) Sessions() *session.Registry { return e.Reg }
func (e StaticEnv) CSRF() *form.CSRF            { return e.Token }
func (e StaticEnv) Palette() theme.Palette      { return e.Pal }
func (e StaticEnv) Logger() *zap.SugaredLogger  { return e.Log }
