package cli

import (
	"hash"
	"io"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// GOST 34.311 is not available here, so messages and key derivation use
// one of these instead.
var hashes = map[string]func() hash.Hash{
	"sha3-256": sha3.New256,
	"sha3-512": sha3.New512,
	"blake2b-256": func() hash.Hash {
		h, _ := blake2b.New256(nil)
		return h
	},
	"blake2b-512": func() hash.Hash {
		h, _ := blake2b.New512(nil)
		return h
	},
}

func hashNames() []string {
	names := make([]string, 0, len(hashes))
	for name := range hashes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupHash(name string) (func() hash.Hash, error) {
	h, ok := hashes[name]
	if !ok {
		return nil, errors.Errorf("unknown hash %q", name)
	}
	return h, nil
}

func digest(name string, r io.Reader) ([]byte, error) {
	newHash, err := lookupHash(name)
	if err != nil {
		return nil, err
	}
	h := newHash()
	if _, err := io.Copy(h, r); err != nil {
		return nil, errors.Wrap(err, "reading message")
	}
	return h.Sum(nil), nil
}
