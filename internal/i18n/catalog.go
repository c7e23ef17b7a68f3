// Package i18n holds the storefront message catalog.
package i18n

import (
	"fmt"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/ro"
	ut "github.com/go-playground/universal-translator"
	"golang.org/x/text/language"
)

const (
	LocaleEN = "en"
	LocaleRO = "ro"
)

// Catalog resolves message keys per locale, falling back to English and then
// to the key itself.
type Catalog struct {
	uni      *ut.UniversalTranslator
	fallback ut.Translator
	matcher  language.Matcher
	locales  []string
}

func New() (*Catalog, error) {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale, ro.New())

	supported := []struct {
		tag      language.Tag
		locale   locales.Translator
		messages map[string]string
	}{
		{language.English, enLocale, messagesEN},
		{language.Romanian, ro.New(), messagesRO},
	}

	c := &Catalog{uni: uni}
	tags := make([]language.Tag, 0, len(supported))
	for _, s := range supported {
		trans, found := uni.GetTranslator(s.locale.Locale())
		if !found {
			return nil, fmt.Errorf("translator for %s not registered", s.locale.Locale())
		}
		for key, text := range s.messages {
			if err := trans.Add(key, text, false); err != nil {
				return nil, fmt.Errorf("add %s message %q: %w", s.locale.Locale(), key, err)
			}
		}
		tags = append(tags, s.tag)
		c.locales = append(c.locales, s.locale.Locale())
	}
	c.fallback, _ = uni.GetTranslator(LocaleEN)
	c.matcher = language.NewMatcher(tags)
	return c, nil
}

// MustNew panics when the built-in catalog fails to load.
func MustNew() *Catalog {
	c, err := New()
	if err != nil {
		panic(err)
	}
	return c
}

// T translates key into locale. Params replace {0}, {1}, ... placeholders.
func (c *Catalog) T(locale, key string, params ...string) string {
	if trans, found := c.uni.GetTranslator(locale); found {
		if msg, err := trans.T(key, params...); err == nil && msg != "" {
			return msg
		}
	}
	if msg, err := c.fallback.T(key, params...); err == nil && msg != "" {
		return msg
	}
	return key
}

// Match picks the best supported locale for an Accept-Language header value.
// An empty or unparseable header yields def.
func (c *Catalog) Match(acceptLanguage, def string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return def
	}
	_, idx, conf := c.matcher.Match(tags...)
	if conf == language.No {
		return def
	}
	return c.locales[idx]
}

func (c *Catalog) Locales() []string {
	return append([]string(nil), c.locales...)
}
