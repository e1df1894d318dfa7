// components/eventform/eventform.go
//
// Event form component: the "Create New Event" page and its JSON API.
//
// Context
//   Every browser session owns one submission controller (see
//   internal/session).  The HTML page and the JSON API are two views of the
//   same controller: the page posts and redirects (POST → 303 → GET), while
//   the API returns the controller snapshot after each call.
//
// Routes
//   GET  /                          page
//   POST /                          apply posted fields, submit, 303 to /
//   POST /notification/dismiss      dismiss, 303 to /
//   GET  /assets/theme.css          generated stylesheet
//   GET  /api/state                 snapshot + CSRF token
//   PUT  /api/draft/{field}         {"value": "..."}
//   POST /api/submit                200, 422, 502, or 409
//   POST /api/notification/dismiss
//
//   Every mutation needs a CSRF token bound to the session: the hidden
//   csrf_token input on pages, the X-CSRF-Token header on the API.
//
//------------------------------------------------------------------------------

package eventform

import (
	"embed"
	"fmt"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/eventform/internal/component"
	"github.com/yanizio/eventform/internal/event"
	"github.com/yanizio/eventform/internal/form"
	"github.com/yanizio/eventform/internal/session"
	"github.com/yanizio/eventform/internal/theme"
)

//go:embed forms/event.yaml templates/*.html
var assets embed.FS

// FormID is the registered form definition.
const FormID = "event/create"

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Component serves the event form.
type Component struct {
	def      *form.FormDef
	theme    *theme.Theme
	sessions *session.Registry
	csrf     *form.CSRF
	timeout  time.Duration
	secure   bool
	log      *zap.SugaredLogger
}

/*────────────────── component.Component methods ───────────────────────────*/

// Name returns the canonical component key.
func (c *Component) Name() string { return "eventform" }

// Init parses the embedded form and templates and captures shared services.
func (c *Component) Init(env component.Env) error {
	def, err := form.Parse(assets, "forms/event.yaml")
	if err != nil {
		return err
	}
	if err := checkFields(def); err != nil {
		return err
	}

	cfg := env.Config()
	th, err := theme.Load("lavender", env.Palette(), cfg.Notification.DismissAfter, assets, "templates")
	if err != nil {
		return err
	}

	c.def = def
	c.theme = th
	c.sessions = env.Sessions()
	c.csrf = env.CSRF()
	c.timeout = cfg.Delivery.Timeout
	c.secure = cfg.Session.CookieSecure
	c.log = env.Logger()
	if c.log == nil {
		c.log = zap.S()
	}
	return nil
}

// Routes adds page, asset, and API routes to r.
func (c *Component) Routes(r chi.Router) {
	r.Get(theme.AssetPrefix+"theme.css", c.handleCSS)

	r.Group(func(r chi.Router) {
		r.Use(c.sessions.Middleware(c.secure))

		r.Get("/", c.handlePage)
		r.Post("/", c.handlePagePOST)
		r.Post("/notification/dismiss", c.handleDismissPOST)

		r.Route("/api", func(api chi.Router) {
			api.Get("/state", c.apiState)
			api.Group(func(m chi.Router) {
				m.Use(c.requireToken)
				m.Put("/draft/{field}", c.apiUpdateField)
				m.Post("/submit", c.apiSubmit)
				m.Post("/notification/dismiss", c.apiDismiss)
			})
		})
	})
}

// Register component at program start.
func init() { component.Register(&Component{}) }

// checkFields makes sure the YAML names exactly the event model's fields.
func checkFields(def *form.FormDef) error {
	if len(def.Fields) != len(event.Fields) {
		return fmt.Errorf("form %s: want %d fields, have %d", def.ID, len(event.Fields), len(def.Fields))
	}
	for _, name := range def.Names() {
		if !event.Field(name).Valid() {
			return fmt.Errorf("form %s: field %q is not an event field", def.ID, name)
		}
	}
	return nil
}
