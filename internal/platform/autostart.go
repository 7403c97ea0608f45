package platform

import "strings"

// EnableAutostart and DisableAutostart install or remove a login item for
// the current user, one implementation per desktop OS.

func autostartName(appName string) string {
	name := strings.TrimSpace(appName)
	if name == "" {
		name = "punchclock"
	}
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}
