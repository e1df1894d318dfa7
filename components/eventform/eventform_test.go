// components/eventform/eventform_test.go
//
// End-to-end tests for the event form component: real chi router, real
// session registry, and a stub deliverer, driven through an httptest
// server with a cookie jar per simulated browser.

package eventform

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/eventform/internal/component"
	"github.com/yanizio/eventform/internal/config"
	"github.com/yanizio/eventform/internal/delivery"
	"github.com/yanizio/eventform/internal/event"
	"github.com/yanizio/eventform/internal/form"
	"github.com/yanizio/eventform/internal/session"
	"github.com/yanizio/eventform/internal/submission"
	"github.com/yanizio/eventform/internal/theme"
)

/* ------------------------------------------------------------------ */
/* harness                                                            */
/* ------------------------------------------------------------------ */

type stubDeliverer struct {
	mu    sync.Mutex
	calls int
	last  event.DraftEvent
	err   error
	gate  chan struct{} // when non-nil, Deliver blocks until closed
	enter chan struct{}
}

func (s *stubDeliverer) Deliver(ctx context.Context, ev event.DraftEvent) error {
	s.mu.Lock()
	s.calls++
	s.last = ev
	gate, enter, err := s.gate, s.enter, s.err
	s.mu.Unlock()

	if gate != nil {
		close(enter)
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (s *stubDeliverer) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newServer(t *testing.T, d delivery.Deliverer) *httptest.Server {
	t.Helper()
	cfg := config.Defaults()
	log := zap.NewNop().Sugar()

	reg := session.NewRegistry(cfg.Session, func() *submission.Controller {
		return submission.New(d, submission.WithLogger(log))
	}, log)
	csrf, err := form.NewCSRF("")
	if err != nil {
		t.Fatal(err)
	}

	c := &Component{}
	env := component.StaticEnv{Cfg: cfg, Reg: reg, Token: csrf, Pal: theme.DefaultPalette(), Log: log}
	if err := c.Init(env); err != nil {
		t.Fatalf("Init: %v", err)
	}
	r := chi.NewRouter()
	c.Routes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		reg.Close()
	})
	return srv
}

type browser struct {
	t    *testing.T
	base string
	http *http.Client
}

func newBrowser(t *testing.T, srv *httptest.Server) *browser {
	jar, _ := cookiejar.New(nil)
	return &browser{t: t, base: srv.URL, http: &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}}
}

func (b *browser) do(method, path, body, contentType, token string) (*http.Response, string) {
	b.t.Helper()
	req, err := http.NewRequest(method, b.base+path, strings.NewReader(body))
	if err != nil {
		b.t.Fatal(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set(TokenHeader, token)
	}
	resp, err := b.http.Do(req)
	if err != nil {
		b.t.Fatal(err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	return resp, string(raw)
}

func (b *browser) state() stateResponse {
	b.t.Helper()
	resp, body := b.do(http.MethodGet, "/api/state", "", "", "")
	if resp.StatusCode != http.StatusOK {
		b.t.Fatalf("state: %d %s", resp.StatusCode, body)
	}
	return decode(b.t, body)
}

func (b *browser) token() string { return b.state().CSRFToken }

func (b *browser) put(field, value, token string) (int, stateResponse) {
	b.t.Helper()
	payload, _ := json.Marshal(fieldUpdate{Value: value})
	resp, body := b.do(http.MethodPut, "/api/draft/"+field, string(payload), "application/json", token)
	return resp.StatusCode, decode(b.t, body)
}

func (b *browser) submit(token string) (int, stateResponse) {
	b.t.Helper()
	resp, body := b.do(http.MethodPost, "/api/submit", "", "", token)
	return resp.StatusCode, decode(b.t, body)
}

func (b *browser) postForm(path string, v url.Values) *http.Response {
	b.t.Helper()
	resp, _ := b.do(http.MethodPost, path, v.Encode(), "application/x-www-form-urlencoded", "")
	return resp
}

func decode(t *testing.T, body string) stateResponse {
	t.Helper()
	var out struct {
		State        string            `json:"state"`
		Draft        event.RawDraft    `json:"draft"`
		Errors       event.FieldErrors `json:"errors"`
		Notification struct {
			Visible bool   `json:"visible"`
			Text    string `json:"text"`
			Kind    string `json:"kind"`
		} `json:"notification"`
		Outcome   string `json:"lastOutcome"`
		CSRFToken string `json:"csrfToken"`
		Error     string `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		t.Fatalf("decode %q: %v", body, err)
	}
	return stateResponse{
		Snapshot: submission.Snapshot{
			Draft:  out.Draft,
			Errors: out.Errors,
			Notification: submission.Notification{
				Visible: out.Notification.Visible,
				Text:    out.Notification.Text,
				Kind:    submission.Kind(out.Notification.Kind),
			},
			Outcome: submission.Outcome(out.Outcome),
		},
		CSRFToken: out.CSRFToken,
		Error:     out.Error,
	}
}

func fillAPI(t *testing.T, b *browser, tok, hook, src, msg string) {
	t.Helper()
	for f, v := range map[string]string{"webhookUrl": hook, "sourceId": src, "message": msg} {
		if code, _ := b.put(f, v, tok); code != http.StatusOK {
			t.Fatalf("put %s: %d", f, code)
		}
	}
}

const (
	goodURL = "https://hooks.slack.com/services/T0/B0/x"
	goodMsg = "Daily report ready"
)

/* ------------------------------------------------------------------ */
/* page                                                               */
/* ------------------------------------------------------------------ */

func TestPageRenders(t *testing.T) {
	srv := newServer(t, &stubDeliverer{})
	b := newBrowser(t, srv)

	resp, body := b.do(http.MethodGet, "/", "", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	for _, want := range []string{
		"<title>Create New Event</title>",
		`placeholder="https://hooks.slack.com/services/..."`,
		`<label for="fld-sourceId">Source ID</label>`,
		`<textarea id="fld-message"`,
		`name="csrf_token"`,
		`href="/assets/theme.css"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(body, `class="notification`) {
		t.Error("fresh page should have no notification")
	}
	if len(resp.Cookies()) == 0 || resp.Cookies()[0].Name != session.CookieName {
		t.Error("session cookie not issued")
	}
}

func TestPagePostRequiresToken(t *testing.T) {
	srv := newServer(t, &stubDeliverer{})
	b := newBrowser(t, srv)

	resp := b.postForm("/", url.Values{"sourceId": {"42"}})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
	if b.state().Draft.SourceID != "" {
		t.Fatal("rejected post must not change the draft")
	}
}

func TestPagePostAllInvalid(t *testing.T) {
	d := &stubDeliverer{}
	srv := newServer(t, d)
	b := newBrowser(t, srv)

	resp := b.postForm("/", url.Values{
		"csrf_token": {b.token()},
		"webhookUrl": {"not a url"},
		"sourceId":   {""},
		"message":    {"short"},
	})
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/" {
		t.Fatalf("status = %d location = %q", resp.StatusCode, resp.Header.Get("Location"))
	}

	_, body := b.do(http.MethodGet, "/", "", "", "")
	for _, want := range []string{
		event.MsgInvalidURL,
		event.MsgSourceRequired,
		event.MsgMessageTooShort,
		`value="not a url"`,
		`class="notification error"`,
		submission.TextFailure,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if d.count() != 0 {
		t.Fatal("invalid form must not be delivered")
	}
}

func TestPagePostSuccessAndDismiss(t *testing.T) {
	d := &stubDeliverer{}
	srv := newServer(t, d)
	b := newBrowser(t, srv)

	b.postForm("/", url.Values{
		"csrf_token": {b.token()},
		"webhookUrl": {goodURL},
		"sourceId":   {"42"},
		"message":    {goodMsg},
	})
	_, body := b.do(http.MethodGet, "/", "", "", "")
	if !strings.Contains(body, submission.TextSuccess) || strings.Contains(body, goodMsg) {
		t.Fatalf("want success banner and cleared form:\n%s", body)
	}
	if d.count() != 1 {
		t.Fatalf("deliveries = %d", d.count())
	}

	resp := b.postForm("/notification/dismiss", url.Values{"csrf_token": {b.token()}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("dismiss status = %d", resp.StatusCode)
	}
	if b.state().Notification.Visible {
		t.Fatal("notification should be dismissed")
	}
}

func TestThemeCSS(t *testing.T) {
	srv := newServer(t, &stubDeliverer{})
	resp, body := newBrowser(t, srv).do(http.MethodGet, "/assets/theme.css", "", "", "")
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/css") {
		t.Fatalf("status = %d type = %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if !strings.Contains(body, "#9b87f5") {
		t.Fatal("palette not in stylesheet")
	}
}

/* ------------------------------------------------------------------ */
/* API                                                                */
/* ------------------------------------------------------------------ */

func TestAPISubmitSuccess(t *testing.T) {
	d := &stubDeliverer{}
	srv := newServer(t, d)
	b := newBrowser(t, srv)
	tok := b.token()

	fillAPI(t, b, tok, goodURL, "42", goodMsg)
	code, st := b.submit(tok)
	if code != http.StatusOK {
		t.Fatalf("status = %d (%s)", code, st.Error)
	}
	if st.Draft != (event.RawDraft{}) || st.Notification.Kind != submission.KindSuccess || st.Outcome != submission.OutcomeSucceeded {
		t.Fatalf("state = %+v", st)
	}
	want := event.DraftEvent{WebhookURL: goodURL, SourceID: "42", Message: goodMsg}
	if d.count() != 1 || d.last != want {
		t.Fatalf("delivered %d × %+v", d.count(), d.last)
	}
}

func TestAPISubmitValidation(t *testing.T) {
	srv := newServer(t, &stubDeliverer{})
	b := newBrowser(t, srv)
	tok := b.token()

	fillAPI(t, b, tok, "https://example.com/hook", "42", goodMsg)
	code, st := b.submit(tok)
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", code)
	}
	if len(st.Errors) != 1 || st.Errors[event.FieldWebhookURL] != event.MsgNotSlackWebhook {
		t.Fatalf("errors = %v", st.Errors)
	}

	// Editing the field clears its error without validating.
	_, st = b.put("webhookUrl", "still bad", tok)
	if st.Errors != nil {
		t.Fatalf("errors after edit = %v", st.Errors)
	}
}

func TestAPISubmitDeliveryFailure(t *testing.T) {
	d := &stubDeliverer{err: errors.New("relay unreachable")}
	srv := newServer(t, d)
	b := newBrowser(t, srv)
	tok := b.token()

	fillAPI(t, b, tok, goodURL, "42", goodMsg)
	code, st := b.submit(tok)
	if code != http.StatusBadGateway {
		t.Fatalf("status = %d", code)
	}
	if st.Error != "delivery failed" || strings.Contains(st.Error, "relay") {
		t.Fatalf("error leaked or missing: %q", st.Error)
	}
	if st.Draft.Message != goodMsg || st.Notification.Text != submission.TextFailure {
		t.Fatalf("state = %+v", st)
	}
}

func TestAPIMutationsNeedToken(t *testing.T) {
	srv := newServer(t, &stubDeliverer{})
	b := newBrowser(t, srv)

	if code, _ := b.put("sourceId", "42", ""); code != http.StatusForbidden {
		t.Errorf("put without token: %d", code)
	}
	if code, _ := b.submit("bogus"); code != http.StatusForbidden {
		t.Errorf("submit with bad token: %d", code)
	}

	// A token from another session is refused.
	other := newBrowser(t, srv)
	if code, _ := b.put("sourceId", "42", other.token()); code != http.StatusForbidden {
		t.Errorf("foreign token accepted: %d", code)
	}
}

func TestAPIUnknownFieldAndBadBody(t *testing.T) {
	srv := newServer(t, &stubDeliverer{})
	b := newBrowser(t, srv)
	tok := b.token()

	if code, _ := b.put("title", "x", tok); code != http.StatusNotFound {
		t.Errorf("unknown field: %d", code)
	}
	resp, _ := b.do(http.MethodPut, "/api/draft/sourceId", `{"val": 1}`, "application/json", tok)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad body: %d", resp.StatusCode)
	}
}

func TestAPIInFlight(t *testing.T) {
	d := &stubDeliverer{gate: make(chan struct{}), enter: make(chan struct{})}
	srv := newServer(t, d)
	b := newBrowser(t, srv)
	tok := b.token()
	fillAPI(t, b, tok, goodURL, "42", goodMsg)

	first := make(chan int, 1)
	go func() {
		code, _ := b.submit(tok)
		first <- code
	}()
	select {
	case <-d.enter:
	case <-time.After(5 * time.Second):
		t.Fatal("delivery never started")
	}

	if code, st := b.submit(tok); code != http.StatusConflict || st.Error != submission.ErrInFlight.Error() {
		t.Fatalf("second submit: %d %q", code, st.Error)
	}
	if code, _ := b.put("message", "edited meanwhile", tok); code != http.StatusConflict {
		t.Fatalf("edit during submit: %d", code)
	}
	if st := b.state(); st.Draft.Message != goodMsg {
		t.Fatalf("draft changed during submit: %+v", st.Draft)
	}

	close(d.gate)
	if code := <-first; code != http.StatusOK {
		t.Fatalf("first submit: %d", code)
	}
	if d.count() != 1 {
		t.Fatalf("deliveries = %d", d.count())
	}
}

func TestAPIDismiss(t *testing.T) {
	srv := newServer(t, &stubDeliverer{})
	b := newBrowser(t, srv)
	tok := b.token()

	b.submit(tok) // empty draft: validation error banner
	resp, body := b.do(http.MethodPost, "/api/notification/dismiss", "", "", tok)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if st := decode(t, body); st.Notification.Visible || st.Notification.Text != "" {
		t.Fatalf("notification = %+v", st.Notification)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	srv := newServer(t, &stubDeliverer{})
	alice, bob := newBrowser(t, srv), newBrowser(t, srv)

	if code, _ := alice.put("sourceId", "alice", alice.token()); code != http.StatusOK {
		t.Fatal(code)
	}
	if got := bob.state().Draft.SourceID; got != "" {
		t.Fatalf("bob sees %q", got)
	}
}

func TestCheckFields(t *testing.T) {
	def, err := form.ParseBytes([]byte("id: x\nfields: [{name: title, label: T, type: text}]"), "x")
	if err != nil {
		t.Fatal(err)
	}
	if checkFields(def) == nil {
		t.Fatal("foreign field list accepted")
	}
}
