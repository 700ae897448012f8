package domain

import "strings"

// SystemPrincipal is recorded when no authenticated identity is available.
const SystemPrincipal = "system"

func ResolvePrincipal(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return SystemPrincipal
	}
	return name
}
