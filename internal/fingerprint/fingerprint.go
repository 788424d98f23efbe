package fingerprint

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// HashLength is the number of hex characters kept from the HMAC output.
// 128 bits: long enough that collision undercounting is negligible, short
// enough to index cheaply as the dedup key.
const HashLength = 32

// DayFormat is the ISO calendar date layout used to scope fingerprints.
// The same visitor hashes to the same value for 24 hours and rotates at
// UTC midnight.
const DayFormat = "2006-01-02"

// Generator derives pseudonymous, day-scoped visitor identifiers from
// client IP + User-Agent. The HMAC key is what keeps the small input
// space (IPv4 addresses x common User-Agent strings x day) from being
// reversible by dictionary; an unkeyed hash would not be a privacy
// boundary at all.
type Generator struct {
	secret []byte
}

// NewGenerator creates a generator with the given HMAC secret.
// An empty secret is refused rather than defaulted.
func NewGenerator(secret []byte) (*Generator, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("fingerprint secret must not be empty")
	}
	return &Generator{secret: secret}, nil
}

// Visitor returns the fingerprint for an (ip, userAgent, day) triple:
// HMAC-SHA256 over "ip|userAgent|day", hex-encoded and truncated to
// HashLength characters. Deterministic, so the storage-level uniqueness
// constraint on (path, day, fingerprint) is an effective dedup key.
func (g *Generator) Visitor(ip, userAgent, day string) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(ip))
	mac.Write([]byte("|"))
	mac.Write([]byte(userAgent))
	mac.Write([]byte("|"))
	mac.Write([]byte(day))
	return hex.EncodeToString(mac.Sum(nil))[:HashLength]
}

// Day formats a timestamp as the UTC calendar date used for fingerprint
// scoping and dedup keys.
func Day(t time.Time) string {
	return t.UTC().Format(DayFormat)
}
