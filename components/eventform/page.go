package eventform

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"

	"github.com/yanizio/eventform/internal/event"
	"github.com/yanizio/eventform/internal/form"
	"github.com/yanizio/eventform/internal/logger"
	"github.com/yanizio/eventform/internal/session"
	"github.com/yanizio/eventform/internal/submission"
)

// maxFormBytes bounds a posted form.  The three fields are small.
const maxFormBytes = 64 << 10

type noteView struct {
	Visible bool
	Text    string
	Kind    string
}

type pageView struct {
	Title    string
	Subtitle string
	Form     template.HTML
	Note     noteView
	CSRF     string
}

/*──────────────────────────── Handlers ─────────────────────────────────────*/

func (c *Component) handleCSS(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(c.theme.CSS())
}

func (c *Component) handlePage(w http.ResponseWriter, r *http.Request) {
	ctl := session.FromContext(r.Context())
	c.render(w, r, ctl.Snapshot())
}

// handlePagePOST applies every posted field, submits, and redirects.  The
// outcome is carried by the controller state, so the redirected GET shows
// the notification, errors, and draft.
func (c *Component) handlePagePOST(w http.ResponseWriter, r *http.Request) {
	if !c.parseAndCheck(w, r) {
		return
	}
	ctl := session.FromContext(r.Context())
	log := logger.FromContext(r.Context())

	for _, f := range event.Fields {
		if _, ok := r.PostForm[string(f)]; !ok {
			continue
		}
		if err := ctl.UpdateField(f, r.PostForm.Get(string(f))); err != nil {
			// ErrBusy: a submit is running in another tab; show its result.
			log.Debugw("field update skipped", "field", f, "err", err)
			c.redirectHome(w, r)
			return
		}
	}

	err := c.submit(r.Context(), ctl)
	var ve *event.ValidationError
	switch {
	case err == nil, errors.As(err, &ve), errors.Is(err, submission.ErrInFlight):
	default:
		log.Warnw("submit failed", "err", err)
	}
	c.redirectHome(w, r)
}

func (c *Component) handleDismissPOST(w http.ResponseWriter, r *http.Request) {
	if !c.parseAndCheck(w, r) {
		return
	}
	session.FromContext(r.Context()).DismissNotification()
	c.redirectHome(w, r)
}

/*──────────────────────────── Helpers ──────────────────────────────────────*/

// submit runs one submission detached from client cancellation but bounded
// by the delivery timeout, so a closed tab cannot leave a half-finished
// delivery behind.
func (c *Component) submit(ctx context.Context, ctl *submission.Controller) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()
	return ctl.Submit(ctx)
}

// parseAndCheck parses the posted form and verifies its CSRF token.  It
// writes the error response itself and returns false on failure.
func (c *Component) parseAndCheck(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return false
	}
	if !c.csrf.Verify(session.IDFromContext(r.Context()), r.PostForm.Get("csrf_token")) {
		logger.FromContext(r.Context()).Infow("csrf token rejected", "path", r.URL.Path)
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return false
	}
	return true
}

func (c *Component) redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (c *Component) render(w http.ResponseWriter, r *http.Request, snap submission.Snapshot) {
	log := logger.FromContext(r.Context())

	tok, err := c.csrf.Token(session.IDFromContext(r.Context()))
	if err != nil {
		log.Errorw("csrf token", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	values := make(map[string]string, len(event.Fields))
	for _, f := range event.Fields {
		values[string(f)] = snap.Draft.Get(f)
	}
	var errs map[string]string
	if len(snap.Errors) > 0 {
		errs = make(map[string]string, len(snap.Errors))
		for f, msg := range snap.Errors {
			errs[string(f)] = msg
		}
	}

	markup, err := form.RenderForm(c.def, form.RenderOptions{
		Values:   values,
		Errors:   errs,
		CSRF:     tok,
		Disabled: snap.State == submission.Submitting,
	})
	if err != nil {
		log.Errorw("render form", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	view := pageView{
		Title:    c.def.Title,
		Subtitle: c.def.Subtitle,
		Form:     markup,
		Note: noteView{
			Visible: snap.Notification.Visible,
			Text:    snap.Notification.Text,
			Kind:    string(snap.Notification.Kind),
		},
		CSRF: tok,
	}

	// Render into a buffer so a template error never leaves a half page.
	var buf bytes.Buffer
	if err := c.theme.Renderer.ExecuteTemplate(&buf, "page.html", view); err != nil {
		log.Errorw("render page", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}
