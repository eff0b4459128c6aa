package internal

import "os"

// localeEnvVars are checked in order; LC_MONETARY is the most specific for
// money formatting.
var localeEnvVars = []string{"LC_MONETARY", "LC_ALL", "LANG"}

// detectSystemLocale returns the locale string from the environment, or ""
// when only the C/POSIX locale is set.
func detectSystemLocale() string {
	for _, envVar := range localeEnvVars {
		locale := os.Getenv(envVar)
		if locale != "" && locale != "C" && locale != "POSIX" {
			return locale
		}
	}
	return ""
}
