package handler

import (
	"github.com/deepwork/internal/locale"
	"github.com/gin-gonic/gin"
)

const localeContextKey = "__request_language"

// LocaleMiddleware resolves request language and sets headers for downstream caching.
func LocaleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		language := requestLanguage(c)
		if language == locale.LanguageEnglish {
			c.Header("Content-Language", "en-US")
		} else {
			c.Header("Content-Language", "zh-CN")
		}
		c.Header("Vary", "Accept-Language")
		c.Next()
	}
}

func requestLanguage(c *gin.Context) string {
	if cached, exists := c.Get(localeContextKey); exists {
		if language, ok := cached.(string); ok {
			return language
		}
	}
	language := locale.Resolve(c.Query("lang"), c.GetHeader("Accept-Language"))
	c.Set(localeContextKey, language)
	return language
}
