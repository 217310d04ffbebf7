package copier

import "fmt"

// Registrar adds a string to the destination pore dictionary and returns its code.
// *container.Writer implements it.
type Registrar interface {
	AddPore(poreType string) (int16, error)
}

// Interner maps pore-type strings to destination codes, registering each
// distinct string with the destination exactly once.
//
// Codes are stable for the lifetime of the Interner, so equal strings seen in
// different source batches get equal destination codes. An Interner is not
// safe for concurrent use.
type Interner struct {
	dest  Registrar
	codes map[string]int16
	order []string
}

// NewInterner creates an empty Interner registering new strings with dest.
func NewInterner(dest Registrar) *Interner {
	return &Interner{
		dest:  dest,
		codes: make(map[string]int16),
	}
}

// Intern returns the destination code of s, registering s on first sight.
// A failed registration is not cached; the next Intern of s tries again.
func (in *Interner) Intern(s string) (int16, error) {
	if code, ok := in.codes[s]; ok {
		return code, nil
	}

	code, err := in.dest.AddPore(s)
	if err != nil {
		return 0, fmt.Errorf("register pore type %q: %w", s, err)
	}

	in.codes[s] = code
	in.order = append(in.order, s)

	return code, nil
}

// Len returns the number of distinct strings registered.
func (in *Interner) Len() int {
	return len(in.order)
}

// Strings returns the registered strings in first-seen order.
func (in *Interner) Strings() []string {
	out := make([]string, len(in.order))
	copy(out, in.order)

	return out
}
