package config

// GetAuthSkipperPaths returns dashboard route paths that do not require a session.
func GetAuthSkipperPaths() []string {
	return []string{"/dashboard/login"}
}
