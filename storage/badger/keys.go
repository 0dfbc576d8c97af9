package badger

import (
	"github.com/go-crypt/x/blake2b"
)

// Key prefixes for different data types
const (
	vectorPrefix = "vec:"
)

const (
	modelDigestSize = 8
	textDigestSize  = 32
)

func digest(size int, text string) []byte {
	h, _ := blake2b.New(size, nil)
	h.Write([]byte(text))
	return h.Sum(nil)
}

// makeModelPrefix generates the key prefix shared by every vector of model.
// Format: prefix + blake2b-64(model)
// An empty model yields the bare prefix, which matches all vectors.
func makeModelPrefix(model string) []byte {
	if model == "" {
		return []byte(vectorPrefix)
	}
	buf := make([]byte, 0, len(vectorPrefix)+modelDigestSize)
	buf = append(buf, vectorPrefix...)
	return append(buf, digest(modelDigestSize, model)...)
}

// makeVectorKey generates the key for the embedding of text under model.
// Format: prefix + blake2b-64(model) + blake2b-256(text)
func makeVectorKey(model, text string) []byte {
	buf := make([]byte, 0, len(vectorPrefix)+modelDigestSize+textDigestSize)
	buf = append(buf, vectorPrefix...)
	buf = append(buf, digest(modelDigestSize, model)...)
	return append(buf, digest(textDigestSize, text)...)
}
