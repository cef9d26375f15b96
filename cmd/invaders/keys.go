package main

import (
	"unicode"

	"github.com/hajimehoshi/ebiten/v2"
)

// keyCode converts an ebiten key into its DOM KeyboardEvent.code name. Ebiten
// already uses those names except for letters, which it reports bare.
func keyCode(k ebiten.Key) string {
	name := k.String()
	if r := []rune(name); len(r) == 1 && unicode.IsLetter(r[0]) {
		return "Key" + name
	}
	return name
}
