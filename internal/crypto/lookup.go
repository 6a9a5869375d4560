package crypto

import (
	"sort"

	"github.com/samber/oops"

	"securechat/internal/domain"
)

var groups = map[string]func() domain.DHPrimitive{
	X25519Name:   func() domain.DHPrimitive { return NewX25519() },
	MODP2048Name: func() domain.DHPrimitive { return NewMODP2048() },
}

// Lookup returns the DH primitive registered under name.
func Lookup(name string) (domain.DHPrimitive, error) {
	mk, ok := groups[name]
	if !ok {
		return nil, oops.In("crypto").With("known", Groups()).Errorf("unknown DH group %q", name)
	}
	return mk(), nil
}

// Groups lists the registered group names in sorted order.
func Groups() []string {
	out := make([]string, 0, len(groups))
	for name := range groups {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
