package requestinfo

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPrimaryLang(t *testing.T) {
	cases := map[string]string{
		"":               "",
		"en-US,en;q=0.9": "en-us",
		"fr;q=0.8, en":   "fr",
		" ES-MX ":        "es-mx",
	}
	for in, want := range cases {
		if got := primaryLang(in); got != want {
			t.Errorf("primaryLang(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEnrich(t *testing.T) {
	var got *RequestInfo
	h := Enrich(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	req.Header.Set("Accept-Language", "de-DE,de;q=0.9")
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("no RequestInfo in context")
	}
	if got.IP.String() != "203.0.113.7" {
		t.Errorf("IP = %s", got.IP)
	}
	if got.Lang != "de-de" {
		t.Errorf("Lang = %q", got.Lang)
	}
	if !got.UA.IsBot {
		t.Error("Googlebot not flagged as bot")
	}
}

func TestFromContextUnset(t *testing.T) {
	if FromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context()) != nil {
		t.Error("expected nil without Enrich")
	}
}
