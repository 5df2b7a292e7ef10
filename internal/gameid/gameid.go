// Package gameid generates sortable identifiers for tables and hands: a
// UUIDv7 rendered as 26 characters of Crockford base32, optionally prefixed
// ("table_01j9...").
package gameid

import (
	"crypto/rand"
	"fmt"
	"strings"
	"sync"

	"github.com/coder/quartz"
)

// Base32 alphabet used by TypeID (Crockford's base32)
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

const encodedLen = 26

// RandSource is satisfied by *rand.Rand from math/rand/v2.
type RandSource interface {
	IntN(n int) int
}

// Generator produces identifiers from an injectable clock and random source.
// A nil random source uses crypto/rand.
type Generator struct {
	mu     sync.Mutex
	rand   RandSource
	clock  quartz.Clock
	prefix string
}

// NewGenerator creates a generator. A nil clock uses the wall clock.
func NewGenerator(randSource RandSource, clock quartz.Clock) *Generator {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Generator{rand: randSource, clock: clock}
}

// WithPrefix returns a generator sharing g's sources whose ids carry prefix.
func (g *Generator) WithPrefix(prefix string) *Generator {
	return &Generator{rand: g.rand, clock: g.clock, prefix: prefix}
}

// Generate creates a new id using a crypto-random generator and the wall clock.
func Generate() string {
	return NewGenerator(nil, nil).Generate()
}

// Generate creates a new id.
func (g *Generator) Generate() string {
	g.mu.Lock()
	uuid := g.uuidV7()
	g.mu.Unlock()

	id := encodeBase32(uuid)
	if g.prefix != "" {
		return g.prefix + "_" + id
	}
	return id
}

func (g *Generator) uuidV7() [16]byte {
	var uuid [16]byte

	// 48-bit millisecond timestamp, then random bits with version and
	// variant overlaid.
	now := g.clock.Now().UnixMilli()
	for i := 0; i < 6; i++ {
		uuid[i] = byte(now >> (40 - 8*i))
	}

	if g.rand != nil {
		for i := 6; i < 16; i++ {
			uuid[i] = byte(g.rand.IntN(256))
		}
	} else if _, err := rand.Read(uuid[6:]); err != nil {
		panic("failed to generate random bytes: " + err.Error())
	}

	uuid[6] = (uuid[6] & 0x0f) | 0x70
	uuid[8] = (uuid[8] & 0x3f) | 0x80
	return uuid
}

// encodeBase32 treats the 128 bits as a 130-bit number with two leading zero
// bits and emits it five bits at a time, so the first character is 0-7.
func encodeBase32(data [16]byte) string {
	bit := func(k int) byte {
		k -= 2
		if k < 0 {
			return 0
		}
		return (data[k/8] >> (7 - k%8)) & 1
	}

	out := make([]byte, encodedLen)
	for i := range out {
		var v byte
		for j := 0; j < 5; j++ {
			v = v<<1 | bit(i*5+j)
		}
		out[i] = alphabet[v]
	}
	return string(out)
}

// Validate checks an id, with or without a prefix.
func Validate(id string) error {
	if i := strings.LastIndexByte(id, '_'); i >= 0 {
		if i == 0 {
			return fmt.Errorf("id %q has an empty prefix", id)
		}
		id = id[i+1:]
	}

	if len(id) != encodedLen {
		return fmt.Errorf("id must be exactly %d characters, got %d", encodedLen, len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("id first character must be 0-7, got %c", id[0])
	}
	for i, char := range id {
		if !strings.ContainsRune(alphabet, char) {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}
	return nil
}
