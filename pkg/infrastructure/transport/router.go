package transport

import (
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"storefront/pkg/domain/service"
)

// Router serves the JSON API under /api and, when staticDir is set, the
// client assets from /.
func Router(catalog service.CatalogService, orders service.OrderService, staticDir string) http.Handler {
	h := &Handler{catalog: catalog, orders: orders}

	r := mux.NewRouter()
	r.HandleFunc("/health", health).Methods(http.MethodGet)

	s := r.PathPrefix("/api").Subrouter()
	s.HandleFunc("/products", h.listProducts).Methods(http.MethodGet)
	s.HandleFunc("/order", h.placeOrder).Methods(http.MethodPost)
	s.HandleFunc("/track/{orderID}", h.trackOrder).Methods(http.MethodGet)
	s.HandleFunc("/payment", h.recordPayment).Methods(http.MethodPost)
	s.HandleFunc("/advance/{orderID}", h.advanceStatus).Methods(http.MethodPost)

	if staticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir))).Methods(http.MethodGet)
	}

	return logMiddleware(corsMiddleware(r))
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func logMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.WithFields(log.Fields{
			"method":     r.Method,
			"url":        r.URL,
			"remoteAddr": r.RemoteAddr,
			"userAgent":  r.UserAgent(),
		}).Info("got a new request")
		h.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
