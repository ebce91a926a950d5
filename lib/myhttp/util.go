package myhttp

import (
	"fmt"
	"net/http"
	"os"
)

func HostnameWithScheme(r *http.Request) string {
	if hostname := os.Getenv("PUBLIC_HOSTNAME"); hostname != "" {
		return hostname
	}

	scheme := "https"
	if r.TLS == nil {
		scheme = "http"
	}

	return fmt.Sprintf("%s://%s", scheme, r.Host)
}
