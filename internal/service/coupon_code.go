package service

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/prepwise-next/internal/config"
)

const (
	couponLetters         = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	couponDigits          = "0123456789"
	couponSimilarChars    = "0O1IL"
	defaultCouponCodeSize = 8
)

// CouponCodeOptions 优惠码生成参数
type CouponCodeOptions struct {
	Length         int    `json:"length"`
	Prefix         string `json:"prefix"`
	Suffix         string `json:"suffix"`
	IncludeLetters bool   `json:"include_letters"`
	IncludeNumbers bool   `json:"include_numbers"`
	ExcludeSimilar bool   `json:"exclude_similar"`
}

// CouponCodeOptionsFromConfig 从配置读取默认生成参数
func CouponCodeOptionsFromConfig(cfg config.CouponGeneratorConfig) CouponCodeOptions {
	return CouponCodeOptions{
		Length:         cfg.Length,
		Prefix:         cfg.Prefix,
		Suffix:         cfg.Suffix,
		IncludeLetters: cfg.IncludeLetters,
		IncludeNumbers: cfg.IncludeNumbers,
		ExcludeSimilar: cfg.ExcludeSimilar,
	}
}

// GenerateCouponCode 生成随机优惠码，唯一性由调用方保证
func GenerateCouponCode(options CouponCodeOptions) (string, error) {
	alphabet := couponAlphabet(options)
	if alphabet == "" {
		return "", ErrCouponCodeOptions
	}
	length := options.Length
	if length <= 0 {
		length = defaultCouponCodeSize
	}

	prefix := strings.ToUpper(strings.TrimSpace(options.Prefix))
	suffix := strings.ToUpper(strings.TrimSpace(options.Suffix))
	var builder strings.Builder
	builder.Grow(len(prefix) + length + len(suffix))
	builder.WriteString(prefix)
	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(alphabet[n.Int64()])
	}
	builder.WriteString(suffix)
	return builder.String(), nil
}

func couponAlphabet(options CouponCodeOptions) string {
	var chars string
	if options.IncludeLetters {
		chars += couponLetters
	}
	if options.IncludeNumbers {
		chars += couponDigits
	}
	if !options.ExcludeSimilar {
		return chars
	}
	var builder strings.Builder
	for _, r := range chars {
		if strings.ContainsRune(couponSimilarChars, r) {
			continue
		}
		builder.WriteRune(r)
	}
	return builder.String()
}
