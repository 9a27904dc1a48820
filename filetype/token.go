package filetype

import (
	"fmt"
	"strings"
)

// TokenKind tags the variant of an accept-filter token.
type TokenKind uint8

const (
	// TokenAll admits every file ("*/*" or "*").
	TokenAll TokenKind = iota
	// TokenCategory admits a coarse category ("image", "video/*", ...).
	TokenCategory
	// TokenMIME admits one exact MIME type ("application/pdf").
	TokenMIME
	// TokenExtension admits one file extension (".csv" or "csv").
	TokenExtension
)

// Token is one resolved accept-filter entry. Tokens are produced from the
// configured filter strings exactly once, at configuration time.
type Token struct {
	Kind  TokenKind
	Value string
}

// String renders the token the way it would be configured.
func (t Token) String() string {
	if t.Kind == TokenAll {
		return "*/*"
	}
	return t.Value
}

// ParseToken classifies one accept-filter string:
//
//	"*/*", "*"            -> TokenAll
//	"image/*", "image"    -> TokenCategory (likewise video, audio, text, ...)
//	"media"               -> shorthand handled by ParseTokens
//	"application/pdf"     -> TokenMIME
//	".csv", "csv"         -> TokenExtension
//
// Anything else fails with ErrUnknownToken.
func ParseToken(s string) (Token, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	if raw == "" {
		return Token{}, fmt.Errorf("%w: empty token", ErrUnknownToken)
	}

	if raw == "*" || raw == "*/*" {
		return Token{Kind: TokenAll}, nil
	}

	if stem, ok := strings.CutSuffix(raw, "/*"); ok {
		if cat, ok := ParseCategory(stem); ok {
			return Token{Kind: TokenCategory, Value: string(cat)}, nil
		}
		return Token{}, fmt.Errorf("%w: %q", ErrUnknownToken, s)
	}

	if cat, ok := ParseCategory(raw); ok {
		return Token{Kind: TokenCategory, Value: string(cat)}, nil
	}

	if strings.Contains(raw, "/") {
		parts := strings.SplitN(raw, "/", 2)
		if parts[0] == "" || parts[1] == "" || strings.ContainsAny(raw, " \t") {
			return Token{}, fmt.Errorf("%w: %q", ErrUnknownToken, s)
		}
		return Token{Kind: TokenMIME, Value: raw}, nil
	}

	ext := normalizeExt(raw)
	if ext == "." || strings.ContainsAny(ext[1:], ". \t") {
		return Token{}, fmt.Errorf("%w: %q", ErrUnknownToken, s)
	}
	return Token{Kind: TokenExtension, Value: ext}, nil
}

// ParseTokens parses a filter list, expanding the "media" shorthand into the
// image, video and audio categories. It fails on the first bad entry.
func ParseTokens(specs []string) ([]Token, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	tokens := make([]Token, 0, len(specs))
	for _, s := range specs {
		if strings.EqualFold(strings.TrimSpace(s), "media") {
			tokens = append(tokens,
				Token{Kind: TokenCategory, Value: string(CategoryImage)},
				Token{Kind: TokenCategory, Value: string(CategoryVideo)},
				Token{Kind: TokenCategory, Value: string(CategoryAudio)},
			)
			continue
		}
		t, err := ParseToken(s)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, nil
}

// Filter is a resolved accept filter: token lists flattened into membership
// sets so per-candidate checks are constant-time. A nil or empty Filter
// admits everything.
type Filter struct {
	tokens     []Token
	allowAll   bool
	categories map[Category]struct{}
	mimes      map[string]struct{}
	exts       map[string]struct{}
}

// NewFilter resolves tokens into a Filter.
func NewFilter(tokens []Token) *Filter {
	f := &Filter{
		tokens:     tokens,
		categories: make(map[Category]struct{}),
		mimes:      make(map[string]struct{}),
		exts:       make(map[string]struct{}),
	}
	for _, t := range tokens {
		switch t.Kind {
		case TokenAll:
			f.allowAll = true
		case TokenCategory:
			f.categories[Category(t.Value)] = struct{}{}
		case TokenMIME:
			f.mimes[t.Value] = struct{}{}
		case TokenExtension:
			f.exts[t.Value] = struct{}{}
		}
	}
	return f
}

// ParseFilter parses and resolves filter strings in one step.
func ParseFilter(specs []string) (*Filter, error) {
	tokens, err := ParseTokens(specs)
	if err != nil {
		return nil, err
	}
	return NewFilter(tokens), nil
}

// Tokens returns the tokens the filter was built from.
func (f *Filter) Tokens() []Token {
	if f == nil {
		return nil
	}
	return f.tokens
}

// Empty reports whether the filter constrains nothing.
func (f *Filter) Empty() bool {
	return f == nil || len(f.tokens) == 0
}

// AllowsCategory reports whether the category is admitted.
func (f *Filter) AllowsCategory(c Category) bool {
	if f.Empty() || f.allowAll {
		return true
	}
	_, ok := f.categories[c]
	return ok
}

// AllowsText reports whether text documents are admitted, which also holds
// for an unconstrained filter.
func (f *Filter) AllowsText() bool {
	return f.AllowsCategory(CategoryText)
}

// Admits applies the filter to a candidate's resolved MIME type and
// extension: pass when the candidate's category, exact MIME type, or
// extension literal is admitted.
func (f *Filter) Admits(mimeType, ext string) bool {
	if f.Empty() || f.allowAll {
		return true
	}
	if _, ok := f.categories[CategoryOf(mimeType)]; ok {
		return true
	}
	if _, ok := f.mimes[strings.ToLower(strings.TrimSpace(mimeType))]; ok {
		return true
	}
	if _, ok := f.exts[normalizeExt(ext)]; ok {
		return true
	}
	return false
}
