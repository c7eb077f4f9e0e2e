package validation

import "regexp"

// Reglas de scope:
//   - Letras (mayúsculas o minúsculas), dígitos, '_', '.', '-'.
//   - Longitud 1..64.
//   - Sin espacios ni ':' (el separador en listas es el espacio).
//
// Válidos: read, write, api.read, orders-admin, Read_All
// Inválidos: "", "bad space", "a:b", ";hack", 65+ chars.
var scopeNameRe = regexp.MustCompile(`^[a-zA-Z0-9_.-]{1,64}$`)

// ValidScopeName reporta si name cumple el patrón de scope.
func ValidScopeName(name string) bool {
	return scopeNameRe.MatchString(name)
}

// InvalidScopes devuelve los scopes que no cumplen el patrón (en orden).
func InvalidScopes(scopes []string) []string {
	var bad []string
	for _, s := range scopes {
		if !ValidScopeName(s) {
			bad = append(bad, s)
		}
	}
	return bad
}
