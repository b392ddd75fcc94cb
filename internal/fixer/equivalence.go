package fixer

import "sqlfixtables/internal/schema"

// aliases accepts reported types that differ textually from a declared
// type but mean the same column. The table is deliberately small: a
// missing alias only produces a spurious notice, a wrong one hides a real
// difference.
var aliases = map[string]func(reported schema.TypeDesc) bool{
	"integer":                intWithWidth,
	"integer auto_increment": intWithWidth,
	"integer unsigned":       intWithWidth,
	"bool": func(reported schema.TypeDesc) bool {
		return reported.String() == "tinyint(1)"
	},
}

// intWithWidth matches reports starting with int(<digits>), such as
// "int(11)" or "int(10) unsigned". Signedness on the reported side is not
// checked.
func intWithWidth(reported schema.TypeDesc) bool {
	return reported.Base == "int" && reported.SizeIsNumeric()
}

// AreEquivalent reports whether a reported column type satisfies a
// declared one. Both are compared in lowercase.
func AreEquivalent(reported, declared schema.TypeDesc) bool {
	if reported.String() == declared.String() {
		return true
	}
	match, ok := aliases[declared.String()]
	if !ok {
		return false
	}
	return match(reported)
}

// SameBase reports whether two types share everything before the size
// parenthesis, i.e. differ only in size or trailing modifiers. A type
// written without a size is compared whole, so "double" and
// "double precision" are different bases.
func SameBase(reported, declared schema.TypeDesc) bool {
	return reported.Base == declared.Base
}
