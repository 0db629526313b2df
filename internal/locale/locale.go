// Package locale picks the response language of public requests.
package locale

import (
	"github.com/brueckenwerk/cms/internal/models"
	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

const ctxKey = "locale"

// Default is the site language used when nothing else matches.
var Default = models.Languages[0]

var matcher = language.NewMatcher(supportedTags())

func supportedTags() []language.Tag {
	tags := make([]language.Tag, 0, len(models.Languages))
	for _, l := range models.Languages {
		tags = append(tags, language.MustParse(l))
	}
	return tags
}

// Supported reports whether lang is one of the site languages.
func Supported(lang string) bool {
	for _, l := range models.Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// Resolve returns the locale for an explicit lang parameter and an
// Accept-Language header, in that order of precedence.
func Resolve(param, acceptLanguage string) string {
	if Supported(param) {
		return param
	}
	if acceptLanguage == "" {
		return Default
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	return models.Languages[idx]
}

// Middleware stores the resolved locale on the request context and sets
// Content-Language.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := Resolve(c.Query("lang"), c.GetHeader("Accept-Language"))
		c.Set(ctxKey, lang)
		c.Header("Content-Language", lang)
		c.Next()
	}
}

// From returns the locale set by Middleware, or Default.
func From(c *gin.Context) string {
	if lang := c.GetString(ctxKey); lang != "" {
		return lang
	}
	return Default
}
