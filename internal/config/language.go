package config

import (
	"os"
	"strings"

	"golang.org/x/text/language"

	"github.com/san-kum/pointerquest/internal/lessons"
)

var supported = []language.Tag{language.English, language.Spanish}

var matcher = language.NewMatcher(supported)

// languageOf maps an exact lesson language code.
func languageOf(s string) (lessons.Language, bool) {
	return lessons.ParseLanguage(strings.ToLower(s))
}

// ResolveLanguage turns a configured language into a lesson language.
// "auto" (or empty) consults LC_ALL, LC_MESSAGES and LANG; any BCP 47 tag
// such as "es-MX" is matched to the closest supported language.
func ResolveLanguage(pref string) lessons.Language {
	if l, ok := languageOf(pref); ok {
		return l
	}
	if pref == "" || pref == "auto" {
		pref = envLocale()
	}
	tag, err := language.Parse(pref)
	if err != nil {
		return lessons.English
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return lessons.English
	}
	base, _ := supported[idx].Base()
	if l, ok := lessons.ParseLanguage(base.String()); ok {
		return l
	}
	return lessons.English
}

func envLocale() string {
	for _, k := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := NormalizeLocale(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

// NormalizeLocale turns a POSIX locale such as es_MX.UTF-8 into the BCP 47
// tag es-MX. C and POSIX yield "".
func NormalizeLocale(v string) string {
	v, _, _ = strings.Cut(v, ".")
	v, _, _ = strings.Cut(v, "@")
	if v == "" || v == "C" || v == "POSIX" {
		return ""
	}
	return strings.ReplaceAll(v, "_", "-")
}
