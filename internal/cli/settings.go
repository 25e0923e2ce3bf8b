package cli

import (
	"fmt"
	"slices"
	"strings"
)

const languageKey = "prefs:language"

var languages = []string{"en", "pt", "es"}

// Language returns the saved interface language, falling back to English.
func (c *Context) Language() string {
	if raw, ok := c.Cache.Get(languageKey); ok && slices.Contains(languages, string(raw)) {
		return string(raw)
	}
	return languages[0]
}

type LangCmd struct {
	Code string `arg:"" optional:"" help:"Language code to use (en|pt|es). Omit to show the current one."`
}

func (c *LangCmd) Run(ctx *Context) error {
	if c.Code == "" {
		ctx.printf("%s\n", ctx.Language())
		return nil
	}
	code := strings.ToLower(c.Code)
	if !slices.Contains(languages, code) {
		return fmt.Errorf("unsupported language %q (use %s)", c.Code, strings.Join(languages, ", "))
	}
	ctx.Cache.Set(languageKey, []byte(code))
	ctx.printf("Language set to %s\n", code)
	return nil
}
