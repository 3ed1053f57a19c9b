package accounts

import "fmt"

// Logger is the logging seam every component accepts. The default
// implementation writes to stdout; hosts inject their own.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// SessionStore is the transient, request/response scoped key-value session
// the host framework provides (server-backed or an encrypted session
// cookie). Values vanish when the browser session ends.
type SessionStore interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

// CookieJar reads and writes the persistent cookie pair. WriteSigned values
// are integrity protected; ReadSigned must treat a bad signature as absent.
type CookieJar interface {
	WriteSigned(name, value string, permanent bool)
	Write(name, value string, permanent bool)
	ReadSigned(name string) (string, bool)
	Read(name string) (string, bool)
	Delete(name string)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ACCOUNTS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
