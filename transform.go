package gecho

// Transformer rewrites a chunk of received bytes in place before it is
// echoed back.
type Transformer func([]byte)

// UpperASCII folds every ASCII lowercase letter in p to uppercase in place.
// All other bytes, including non-ASCII ones, are left untouched.
func UpperASCII(p []byte) {
	for i, c := range p {
		if 'a' <= c && c <= 'z' {
			p[i] = c - ('a' - 'A')
		}
	}
}

// ToUpperASCII returns a copy of p transformed by UpperASCII.
func ToUpperASCII(p []byte) []byte {
	out := make([]byte, len(p))
	copy(out, p)
	UpperASCII(out)
	return out
}
