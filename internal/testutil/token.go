package testutil

// FixedTokenSource generates the same event token every time.
//
// This enables deterministic test execution and golden snapshot comparison.
// The same scenario with the same FixedTokenSource produces byte-identical
// rendered output.
//
// Unlike ident.FixedGenerator which returns tokens in sequence, this source
// always returns the same token. This is useful for scenarios where every
// event should carry the same token.
//
// Thread-safety: FixedTokenSource is stateless and safe for concurrent use.
type FixedTokenSource struct {
	token string
}

// NewFixedTokenSource creates a new fixed token source.
//
// If token is empty, Generate() returns "test-token-default".
func NewFixedTokenSource(token string) *FixedTokenSource {
	if token == "" {
		token = "test-token-default"
	}
	return &FixedTokenSource{token: token}
}

// Generate returns the fixed token.
//
// Implements ident.Generator.
func (g *FixedTokenSource) Generate() string {
	return g.token
}
