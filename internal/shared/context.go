package shared

import (
	"context"

	"golang.org/x/text/language"
)

type languageContextKey struct{}

// ContextWithLanguage stores the negotiated response language in context.
func ContextWithLanguage(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, languageContextKey{}, tag)
}

// LanguageFromContext extracts the negotiated language, defaulting to English.
func LanguageFromContext(ctx context.Context) language.Tag {
	tag, ok := ctx.Value(languageContextKey{}).(language.Tag)
	if !ok {
		return language.English
	}
	return tag
}
