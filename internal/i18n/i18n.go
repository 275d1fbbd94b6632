package i18n

import (
	"fmt"
	"strings"

	"github.com/prepwise-next/internal/constants"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

// 站点语言
const (
	LocaleZH = constants.LocaleZhCN
	LocaleTW = constants.LocaleZhTW
	LocaleEN = constants.LocaleEnUS
)

// DefaultLocale 无法识别请求语言时使用
const DefaultLocale = LocaleZH

// HeaderLocale 前端显式指定语言的请求头
const HeaderLocale = "X-Locale"

var matcher = language.NewMatcher([]language.Tag{
	language.SimplifiedChinese,
	language.TraditionalChinese,
	language.AmericanEnglish,
})

var matchedLocales = []string{LocaleZH, LocaleTW, LocaleEN}

// T 获取翻译，缺失时依次回退到默认语言与 key 本身
func T(locale, key string) string {
	if msg, ok := lookup(NormalizeLocale(locale), key); ok {
		return msg
	}
	if msg, ok := lookup(DefaultLocale, key); ok {
		return msg
	}
	return key
}

// Sprintf 获取带参数的翻译
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}

// ResolveLocale 从请求头解析语言
func ResolveLocale(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return DefaultLocale
	}
	if explicit := strings.TrimSpace(c.GetHeader(HeaderLocale)); explicit != "" {
		return NormalizeLocale(explicit)
	}
	accept := strings.TrimSpace(c.GetHeader("Accept-Language"))
	if accept == "" {
		return DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultLocale
	}
	return matchedLocales[index]
}

// NormalizeLocale 归一化语言标识，不支持的语言回退默认语言
func NormalizeLocale(locale string) string {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return DefaultLocale
	}
	for _, supported := range constants.SupportedLocales {
		if strings.EqualFold(locale, supported) {
			return supported
		}
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return DefaultLocale
	}
	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return DefaultLocale
	}
	return matchedLocales[index]
}

func lookup(locale, key string) (string, bool) {
	table, ok := messages[locale]
	if !ok {
		return "", false
	}
	msg, ok := table[key]
	return msg, ok
}
