package i18n

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestTFallsBackToDefaultLocaleThenKey(t *testing.T) {
	if got := T(LocaleEN, "error.forbidden"); got != "Forbidden" {
		t.Fatalf("unexpected en message: %s", got)
	}
	if got := T("fr-FR", "error.forbidden"); got != "无权访问" {
		t.Fatalf("unsupported locale should use default, got %s", got)
	}
	if got := T(LocaleEN, "error.not_a_key"); got != "error.not_a_key" {
		t.Fatalf("missing key should echo key, got %s", got)
	}
}

func TestSprintfFormatsArguments(t *testing.T) {
	if got := Sprintf(LocaleEN, "error.rate_limited", 30); got != "Too many requests, retry in 30 seconds" {
		t.Fatalf("unexpected formatted message: %s", got)
	}
}

func TestNormalizeLocale(t *testing.T) {
	cases := map[string]string{
		"":        LocaleZH,
		"en-us":   LocaleEN,
		"en-GB":   LocaleEN,
		"zh-Hant": LocaleTW,
		"zh":      LocaleZH,
		"???":     LocaleZH,
	}
	for input, want := range cases {
		if got := NormalizeLocale(input); got != want {
			t.Fatalf("NormalizeLocale(%q) want %s got %s", input, want, got)
		}
	}
}

func TestResolveLocalePrefersExplicitHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)
	c.Request.Header.Set("Accept-Language", "en-US,en;q=0.9")
	if got := ResolveLocale(c); got != LocaleEN {
		t.Fatalf("accept-language should resolve en, got %s", got)
	}
	c.Request.Header.Set(HeaderLocale, "zh-TW")
	if got := ResolveLocale(c); got != LocaleTW {
		t.Fatalf("explicit header should win, got %s", got)
	}
}

func TestEveryLocaleHasSameKeys(t *testing.T) {
	base := messages[DefaultLocale]
	for locale, table := range messages {
		if len(table) != len(base) {
			t.Fatalf("locale %s has %d keys, default has %d", locale, len(table), len(base))
		}
		for key := range base {
			if _, ok := table[key]; !ok {
				t.Fatalf("locale %s missing key %s", locale, key)
			}
		}
	}
}
