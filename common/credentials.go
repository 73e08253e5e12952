package common

import "os"

// Environment variables read by ResolveCredentials
const (
	EnvUsername = "EARTHDATA_USERNAME"
	EnvPassword = "EARTHDATA_PASSWORD"
	EnvToken    = "EARTHDATA_TOKEN"
)

// Credentials is an opaque (username, secret) pair, optionally with a bearer
// token. Values must never appear in logs or error messages.
type Credentials struct {
	Username string
	Password string
	Token    string
}

// ResolveCredentials returns usable credentials: explicit arguments take
// precedence, the environment is the fallback. An empty result is not an
// error; authentication failure is deferred until a network operation
// actually requires it.
func ResolveCredentials(username, password string) Credentials {
	creds := Credentials{Username: username, Password: password}
	if creds.Username == "" || creds.Password == "" {
		creds.Username = os.Getenv(EnvUsername)
		creds.Password = os.Getenv(EnvPassword)
	}
	creds.Token = os.Getenv(EnvToken)
	return creds
}

// Empty returns true if no authentication material is available
func (c Credentials) Empty() bool {
	return c.Token == "" && (c.Username == "" || c.Password == "")
}
