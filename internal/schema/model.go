package schema

// KeyKind is the index participation reported for a live column.
type KeyKind int

const (
	KeyNone KeyKind = iota
	KeyUnique
	KeyPrimary
	KeyMultiple // non-unique index
)

// ParseKeyKind maps DESCRIBE's Key column (PRI, UNI, MUL) to a KeyKind.
func ParseKeyKind(s string) KeyKind {
	switch s {
	case "PRI", "pri":
		return KeyPrimary
	case "UNI", "uni":
		return KeyUnique
	case "MUL", "mul":
		return KeyMultiple
	default:
		return KeyNone
	}
}

// IsUnique reports whether the key enforces uniqueness.
func (k KeyKind) IsUnique() bool {
	return k == KeyUnique || k == KeyPrimary
}

func (k KeyKind) String() string {
	switch k {
	case KeyPrimary:
		return "PRI"
	case KeyUnique:
		return "UNI"
	case KeyMultiple:
		return "MUL"
	default:
		return ""
	}
}

// LiveColumn is one column of a table as reported by the database.
type LiveColumn struct {
	Name     string
	RawType  string   // as reported, e.g. "int(11)"
	Type     TypeDesc // RawType parsed once
	Nullable bool
	Key      KeyKind
	Default  *string
	Extra    string // e.g. "auto_increment"
}
