package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func siteAuthServe(t *testing.T, user, pass string, setAuth func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	h := SiteBasicAuth(user, pass)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if setAuth != nil {
		setAuth(r)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestSiteBasicAuth(t *testing.T) {
	t.Run("valid credentials", func(t *testing.T) {
		rec := siteAuthServe(t, "site", "secret", func(r *http.Request) {
			r.SetBasicAuth("site", "secret")
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if cc := rec.Header().Get("Cache-Control"); cc != "private, no-store" {
			t.Fatalf("Cache-Control = %q, want private, no-store", cc)
		}
	})

	t.Run("no header", func(t *testing.T) {
		rec := siteAuthServe(t, "site", "secret", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
		if rec.Header().Get("WWW-Authenticate") == "" {
			t.Fatalf("401 must ask for basic auth")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := siteAuthServe(t, "site", "secret", func(r *http.Request) {
			r.SetBasicAuth("site", "wrong")
		})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("garbage header", func(t *testing.T) {
		rec := siteAuthServe(t, "site", "secret", func(r *http.Request) {
			r.Header.Set("Authorization", "Basic not-base64!!!")
		})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("empty config disables the guard", func(t *testing.T) {
		rec := siteAuthServe(t, "", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 without configured credentials", rec.Code)
		}
	})
}

func TestMaskToken(t *testing.T) {
	if got := MaskToken("abcdef-123456"); got != "abcd***" {
		t.Fatalf("MaskToken = %q", got)
	}
	if got := MaskToken("ab"); got != "****" {
		t.Fatalf("MaskToken short = %q", got)
	}
}
