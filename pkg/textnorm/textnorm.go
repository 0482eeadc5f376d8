// Package textnorm normaliza nombres e identificadores de proveedores para usarlos en
// claves de orden y nombres de archivo (sin tildes, solo ASCII).
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold elimina tildes y diacríticos: "Café Ñandú" → "Cafe Nandu".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Key devuelve una clave en mayúsculas con solo letras ASCII y dígitos.
func Key(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(Fold(s)) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FileName convierte un nombre libre en un nombre de archivo seguro: espacios → "_",
// "/" → "-", sin tildes ni caracteres de control.
func FileName(s string) string {
	var b strings.Builder
	for _, r := range Fold(strings.TrimSpace(s)) {
		switch {
		case r == ' ':
			b.WriteRune('_')
		case r == '/' || r == '\\':
			b.WriteRune('-')
		case r < 128 && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.'):
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "UNKNOWN"
	}
	return b.String()
}
