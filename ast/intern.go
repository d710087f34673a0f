package ast

// ---------------------------------------------------------------------------
// Interner: identifier text -> stable small integer handles
// ---------------------------------------------------------------------------

// Interner deduplicates identifier strings into NameIdx handles.
// Handles are assigned in first-seen order and never reused.
type Interner struct {
	strings []string
	lookup  map[string]NameIdx
}

// NewInterner creates an empty interner.
func NewInterner() *Interner {
	return &Interner{
		lookup: make(map[string]NameIdx),
	}
}

// Intern returns the handle for s, assigning a fresh one on first sight.
func (in *Interner) Intern(s string) NameIdx {
	if idx, ok := in.lookup[s]; ok {
		return idx
	}
	idx := NameIdx(len(in.strings))
	in.strings = append(in.strings, s)
	in.lookup[s] = idx
	return idx
}

// Name returns the string for a handle.
func (in *Interner) Name(idx NameIdx) string {
	return in.strings[idx]
}

// Lookup returns the handle for s without interning it.
func (in *Interner) Lookup(s string) (NameIdx, bool) {
	idx, ok := in.lookup[s]
	return idx, ok
}

// Count returns the number of interned strings.
func (in *Interner) Count() int {
	return len(in.strings)
}
