package middlewares

import (
	"crm/utils"
	"net/http"
	"os"
	"slices"
	"strings"
)

var developmentOrigins = []string{
	"http://localhost:5173",
	"http://localhost:3000",
}

func allowedOrigins() []string {
	if os.Getenv(utils.ENV) != utils.ENV_RELEASE {
		return developmentOrigins
	}

	origins := []string{}
	for _, origin := range strings.Split(os.Getenv(utils.CORS_ALLOWED_ORIGINS), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func Cors(next http.Handler) http.Handler {
	origins := allowedOrigins()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if slices.Contains(origins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == "OPTIONS" {
			utils.SendResponse(w, http.StatusOK, "", nil, 0)
			return
		}

		next.ServeHTTP(w, r)
	})
}
