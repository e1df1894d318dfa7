package form

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"testing/fstest"
	"time"
)

const sampleYAML = `
id: event/create
title: Create New Event
submit: Create Event
busy: Creating...
fields:
  - name: webhookUrl
    label: Slack Webhook URL
    type: url
    placeholder: https://hooks.slack.com/services/...
  - name: message
    label: Message
    type: textarea
`

func TestParse(t *testing.T) {
	fsys := fstest.MapFS{"forms/event.yaml": {Data: []byte(sampleYAML)}}
	fd, err := Parse(fsys, "forms/event.yaml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if fd.ID != "event/create" || fd.Title != "Create New Event" || fd.Busy != "Creating..." {
		t.Fatalf("unexpected def: %+v", fd)
	}
	if got := strings.Join(fd.Names(), ","); got != "webhookUrl,message" {
		t.Fatalf("names = %s", got)
	}
}

func TestParseRejects(t *testing.T) {
	cases := map[string]string{
		"no id":     "fields: [{name: a, label: A, type: text}]",
		"no fields": "id: x",
		"no name":   "id: x\nfields: [{label: A, type: text}]",
		"no label":  "id: x\nfields: [{name: a, type: text}]",
		"bad type":  "id: x\nfields: [{name: a, label: A, type: select}]",
		"duplicate": "id: x\nfields: [{name: a, label: A, type: text}, {name: a, label: B, type: url}]",
		"negative":  "id: x\nfields: [{name: a, label: A, type: textarea, rows: -1}]",
		"not yaml":  "id: [",
	}
	for name, doc := range cases {
		if _, err := ParseBytes([]byte(doc), name); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestRenderForm(t *testing.T) {
	fd, err := ParseBytes([]byte(sampleYAML), "sample")
	if err != nil {
		t.Fatal(err)
	}
	out, err := RenderForm(fd, RenderOptions{
		Values: map[string]string{"webhookUrl": `"><script>`, "message": "hi <b>"},
		Errors: map[string]string{"message": "Message must be at least 10 characters"},
		CSRF:   "tok",
	})
	if err != nil {
		t.Fatal(err)
	}
	html := string(out)

	for _, want := range []string{
		`id="fld-webhookUrl"`,
		`placeholder="https://hooks.slack.com/services/..."`,
		`value="&#34;&gt;&lt;script&gt;"`,
		`hi &lt;b&gt;</textarea>`,
		`aria-describedby="fld-message-error"`,
		`<span class="error" id="fld-message-error" role="alert">Message must be at least 10 characters</span>`,
		`name="csrf_token" value="tok"`,
		`>Create Event</button>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("missing %q in:\n%s", want, html)
		}
	}
	if strings.Count(html, `class="error"`) != 1 {
		t.Error("only the failing field should show an error")
	}
	if strings.Contains(html, "<script>") {
		t.Error("values must be escaped")
	}
}

func TestRenderFormDisabled(t *testing.T) {
	fd, _ := ParseBytes([]byte(sampleYAML), "sample")
	out, _ := RenderForm(fd, RenderOptions{Disabled: true})
	if !strings.Contains(string(out), `disabled>Creating...</button>`) {
		t.Fatalf("busy button not rendered:\n%s", out)
	}
}

func TestCSRF(t *testing.T) {
	key := base64.RawURLEncoding.EncodeToString([]byte(strings.Repeat("k", 32)))
	c, err := NewCSRF(key)
	if err != nil {
		t.Fatal(err)
	}

	tok, err := c.Token("s1")
	if err != nil {
		t.Fatal(err)
	}
	if !c.Verify("s1", tok) {
		t.Fatal("fresh token should verify")
	}
	if c.Verify("s2", tok) {
		t.Fatal("token must be bound to its session")
	}
	raw, _ := base64.RawURLEncoding.DecodeString(tok)
	raw[len(raw)-1] ^= 0xff
	tampered := base64.RawURLEncoding.EncodeToString(raw)
	if c.Verify("s1", tampered) || c.Verify("s1", "") || c.Verify("s1", "!!") {
		t.Fatal("tampered token verified")
	}

	other, _ := NewCSRF("")
	if other.Verify("s1", tok) {
		t.Fatal("token verified under a different key")
	}

	base := time.Now()
	c.now = func() time.Time { return base.Add(MaxAge + time.Minute) }
	if c.Verify("s1", tok) {
		t.Fatal("expired token verified")
	}
	c.now = func() time.Time { return base.Add(-2 * time.Minute) }
	if c.Verify("s1", tok) {
		t.Fatal("future token verified")
	}
}

func TestNewCSRFWeakKey(t *testing.T) {
	for _, k := range []string{"short", "not base64 !!!"} {
		if _, err := NewCSRF(k); !errors.Is(err, ErrWeakKey) {
			t.Errorf("%q: want ErrWeakKey, got %v", k, err)
		}
	}
}
