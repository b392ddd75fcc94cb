package schema

import "strings"

// TypeDesc is a column type split at its parenthesized size. Base is
// everything before the parenthesis, so a type without one is all base.
// All parts are lowercase.
//
//	"int(11) unsigned" -> {Base: "int", Size: "11", Modifiers: "unsigned"}
//	"integer auto_increment" -> {Base: "integer auto_increment"}
type TypeDesc struct {
	Base      string
	Size      string
	Modifiers string
	HasSize   bool
}

// ParseType parses a raw type string. It never fails; unparseable input
// ends up in Base.
func ParseType(raw string) TypeDesc {
	s := strings.ToLower(strings.TrimSpace(raw))
	open := strings.IndexByte(s, '(')
	if open < 0 {
		return TypeDesc{Base: strings.Join(strings.Fields(s), " ")}
	}
	closing := strings.IndexByte(s[open:], ')')
	if closing < 0 {
		return TypeDesc{Base: strings.TrimSpace(s[:open]), Modifiers: strings.TrimSpace(s[open:])}
	}
	closing += open
	return TypeDesc{
		Base:      strings.TrimSpace(s[:open]),
		Size:      strings.ReplaceAll(s[open+1:closing], " ", ""),
		Modifiers: strings.TrimSpace(s[closing+1:]),
		HasSize:   true,
	}
}

func (t TypeDesc) String() string {
	var b strings.Builder
	b.WriteString(t.Base)
	if t.HasSize {
		b.WriteString("(" + t.Size + ")")
	}
	if t.Modifiers != "" {
		b.WriteString(" " + t.Modifiers)
	}
	return b.String()
}

// SizeIsNumeric reports whether the size parameter is a plain digit run, as
// in int(11).
func (t TypeDesc) SizeIsNumeric() bool {
	if !t.HasSize || t.Size == "" {
		return false
	}
	for _, r := range t.Size {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
