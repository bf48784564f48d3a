package middleware

import (
	"net/http"

	"golang.org/x/text/language"

	"edusahasra/internal/apiclient"
)

const localeCookieName = "language"

// supported are the UI locales, in preference order. English is the
// fallback.
var supported = []language.Tag{
	language.English,
	language.Sinhala,
	language.Tamil,
}

var localeMatcher = language.NewMatcher(supported)

// Locale returns middleware that resolves the viewer's locale from the
// language cookie, then the Accept-Language header, then the default.
// The resolved locale rides the request context and is forwarded to the
// backend as Accept-Language.
func Locale(defaultLocale string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := resolveLocale(r, defaultLocale)
			ctx := apiclient.WithLocale(r.Context(), locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SetLocaleCookie persists the viewer's language choice.
func SetLocaleCookie(w http.ResponseWriter, locale string) {
	http.SetCookie(w, &http.Cookie{
		Name:     localeCookieName,
		Value:    locale,
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
	})
}

func resolveLocale(r *http.Request, fallback string) string {
	if cookie, err := r.Cookie(localeCookieName); err == nil && cookie.Value != "" {
		if tag := matchLocale(cookie.Value); tag != "" {
			return tag
		}
	}
	if header := r.Header.Get("Accept-Language"); header != "" {
		if tags, _, err := language.ParseAcceptLanguage(header); err == nil && len(tags) > 0 {
			_, idx, conf := localeMatcher.Match(tags...)
			if conf > language.No {
				return baseCode(supported[idx])
			}
		}
	}
	if fallback != "" {
		return fallback
	}
	return "en"
}

func matchLocale(value string) string {
	tag, err := language.Parse(value)
	if err != nil {
		return ""
	}
	_, idx, conf := localeMatcher.Match(tag)
	if conf == language.No {
		return ""
	}
	return baseCode(supported[idx])
}

func baseCode(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}
