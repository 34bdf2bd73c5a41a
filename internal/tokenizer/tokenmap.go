package tokenizer

// TokenMap is the bidirectional vocabulary: token string to id and back.
// Reserved tokens (the unknown token plus the characters handed to
// NewTokenMap) occupy the lowest ids and never participate in merges.
type TokenMap struct {
	byString     map[string]Token
	strings      []string
	lastReserved Token
}

// NewTokenMap builds a vocabulary seeded with the unknown token and one
// reserved token per given character.
func NewTokenMap(reserved ...rune) *TokenMap {
	m := &TokenMap{byString: make(map[string]Token)}
	m.Intern("<unk>")
	for _, r := range reserved {
		m.Intern(string(r))
	}
	m.lastReserved = Token(len(m.strings) - 1)
	return m
}

// Intern returns the token for s, creating it if needed.
func (m *TokenMap) Intern(s string) Token {
	if t, ok := m.byString[s]; ok {
		return t
	}
	t := Token(len(m.strings))
	m.byString[s] = t
	m.strings = append(m.strings, s)
	return t
}

// Lookup returns the token for s, or Unknown when s was never interned.
func (m *TokenMap) Lookup(s string) Token {
	if t, ok := m.byString[s]; ok {
		return t
	}
	return Unknown
}

// String returns the text of t, or the empty string for an out-of-range id.
func (m *TokenMap) String(t Token) string {
	if int(t) >= len(m.strings) {
		return ""
	}
	return m.strings[t]
}

// Merge interns the concatenation of the pair's token strings.
func (m *TokenMap) Merge(p Pair) Token {
	return m.Intern(m.String(p.A) + m.String(p.B))
}

// LastReserved returns the highest reserved token id.
func (m *TokenMap) LastReserved() Token {
	return m.lastReserved
}

// Count reports the vocabulary size including reserved tokens.
func (m *TokenMap) Count() int {
	return len(m.strings)
}

// Strings renders a token sequence back to its per-token text, mostly for
// diagnostics and report output.
func (m *TokenMap) Strings(ids []Token) []string {
	out := make([]string, len(ids))
	for i, t := range ids {
		out[i] = m.String(t)
	}
	return out
}
