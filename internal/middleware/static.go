package middleware

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
)

// Static serves regular files under dir and passes everything else on.
func Static(dir string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if dir == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
			info, err := os.Stat(name)
			if err != nil || !info.Mode().IsRegular() {
				next.ServeHTTP(w, r)
				return
			}
			http.ServeFile(w, r, name)
		})
	}
}
