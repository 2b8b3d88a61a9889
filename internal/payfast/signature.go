package payfast

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"
)

// spaceEncoding selects how spaces are rendered in the canonical string.
type spaceEncoding int

const (
	// spaceAsPlus is form encoding: space becomes "+".
	spaceAsPlus spaceEncoding = iota
	// spaceAsPercent is raw RFC 3986 encoding: space becomes "%20".
	spaceAsPercent
)

// signatureSpaceEncoding is pinned to the gateway's documented urlencode
// behaviour (PHP urlencode semantics). Changing it breaks every signature;
// re-verify against the sandbox before touching it.
const signatureSpaceEncoding = spaceAsPlus

const upperhex = "0123456789ABCDEF"

// encodeValue percent-encodes a single parameter value the way the gateway
// does. Unlike net/url, "~", "!", "*", "(" and ")" are escaped and hex digits
// are uppercase, matching PHP's urlencode which PayFast uses on its side.
func encodeValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9',
			c == '-', c == '_', c == '.':
			b.WriteByte(c)
		case c == ' ' && signatureSpaceEncoding == spaceAsPlus:
			b.WriteByte('+')
		default:
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&0xf])
		}
	}
	return b.String()
}

// SignatureString builds the canonical string the signature is computed over:
// empty values dropped (a literal "0" survives), keys byte-sorted, values
// encoded per encodeValue, pairs joined with "&", and the passphrase appended
// with the same encoding when configured. Pure; never logs.
func SignatureString(params map[string]string, passphrase string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(encodeValue(params[k]))
	}
	if passphrase != "" {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString("passphrase=")
		b.WriteString(encodeValue(passphrase))
	}
	return b.String()
}

// Sign computes the gateway signature: lowercase hex MD5 of the canonical
// string. The digest algorithm is the gateway's, not a local choice.
func Sign(params map[string]string, passphrase string) string {
	base := SignatureString(params, passphrase)
	if base == "" {
		return ""
	}
	sum := md5.Sum([]byte(base))
	return hex.EncodeToString(sum[:])
}

// VerifySignature checks the "signature" field of a notification against a
// locally computed one. Fails closed: a missing or empty signature, or a
// payload that canonicalizes to nothing, is a mismatch, never a panic.
func VerifySignature(params map[string]string, passphrase string) bool {
	received := params[FieldSignature]
	if received == "" {
		return false
	}

	unsigned := make(map[string]string, len(params))
	for k, v := range params {
		if k == FieldSignature {
			continue
		}
		unsigned[k] = v
	}

	computed := Sign(unsigned, passphrase)
	if computed == "" {
		return false
	}
	return strings.EqualFold(computed, received)
}
