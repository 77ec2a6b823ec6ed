package utils

import (
	"github.com/exascience/pargo/sync"
)

// A Symbol is a unique pointer to a string. Symbols interned from equal
// strings are pointer-equal, so they can be compared and used as map
// keys cheaply.
type Symbol *string

type symbolName string

func (s symbolName) Hash() (hash uint64) {
	// DJBX33A
	hash = 5381
	for _, b := range s {
		hash = ((hash << 5) + hash) + uint64(b)
	}
	return
}

var symbolTable = sync.NewMap(0)

// Intern returns the canonical Symbol for the given string. It is safe
// for multiple goroutines to call Intern concurrently.
func Intern(s string) Symbol {
	entry, _ := symbolTable.LoadOrStore(symbolName(s), Symbol(&s))
	return entry.(Symbol)
}
