package shared

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message catalog keys.
const (
	MsgAuthFailed       = "user.authentication.error"
	MsgAccessDenied     = "user.access.error.denied"
	MsgFieldTaken       = "user.register.error.field.taken"
	MsgNotFound         = "user.register.error.not.found"
	MsgNotAuthenticated = "user.authentication.required"
	MsgValidation       = "request.validation.error"
	MsgInternal         = "server.error.internal"
	MsgResourceNotFound = "resource.error.not.found"
	MsgReviewDuplicate  = "review.error.duplicate"
	MsgWishlistPrivate  = "wishlist.error.private"
	MsgOrderEmpty       = "order.error.empty"
	MsgDuplicateRequest = "request.error.duplicate"
)

var supportedLanguages = []language.Tag{language.English, language.French}

var (
	messages = newCatalog()
	matcher  = language.NewMatcher(supportedLanguages)
)

func newCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	set := func(key, en, fr string) {
		_ = b.SetString(language.English, key, en)
		_ = b.SetString(language.French, key, fr)
	}
	set(MsgAuthFailed, "Authentication failed", "Échec de l'authentification")
	set(MsgAccessDenied, "Access denied", "Accès refusé")
	set(MsgFieldTaken, "%s already taken", "%s déjà utilisé")
	set(MsgNotFound, "%s not found", "%s introuvable")
	set(MsgNotAuthenticated, "Authentication required", "Authentification requise")
	set(MsgValidation, "Validation failed", "Données invalides")
	set(MsgInternal, "Internal error", "Erreur interne")
	set(MsgResourceNotFound, "%s not found", "%s introuvable")
	set(MsgReviewDuplicate, "You have already reviewed this product", "Vous avez déjà noté ce produit")
	set(MsgWishlistPrivate, "This wishlist is private", "Cette wishlist est privée")
	set(MsgOrderEmpty, "Cannot create order with no valid products", "Impossible de créer une commande sans produit valide")
	set(MsgDuplicateRequest, "This request was already processed", "Cette requête a déjà été traitée")
	return b
}

// MatchLanguage resolves an Accept-Language header to a supported tag.
// Unknown or empty headers resolve to English.
func MatchLanguage(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, idx, _ := matcher.Match(tags...)
	return supportedLanguages[idx]
}

// Localize renders the catalog entry key in the given language.
func Localize(tag language.Tag, key string, args ...any) string {
	p := message.NewPrinter(tag, message.Catalog(messages))
	return p.Sprintf(key, args...)
}
