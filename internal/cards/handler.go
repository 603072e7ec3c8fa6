package cards

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/muyouzhi6/cliproxy-stats/internal/cpa"
	"github.com/muyouzhi6/cliproxy-stats/pkg/logger"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, details interface{}) {
	payload := map[string]interface{}{"error": msg}
	if details != nil {
		payload["details"] = details
	}
	writeJSON(w, status, payload)
}

func writeCardError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnknownKind):
		writeError(w, http.StatusNotFound, "Unknown card kind", nil)
	case errors.Is(err, ErrNoData):
		writeError(w, http.StatusNotFound, "No data for card", nil)
	default:
		var ext cpa.ExternalError
		if errors.As(err, &ext) {
			writeError(w, http.StatusServiceUnavailable, "CLIProxyAPI unavailable", map[string]string{"details": err.Error()})
			return
		}
		logger.Error("cards: request failed", logger.WithError(err))
		writeError(w, http.StatusInternalServerError, "Internal server error", nil)
	}
}

// RegisterRoutes mounts the card endpoints onto the router.
func RegisterRoutes(r *mux.Router, svc *Service, client *cpa.Client) {
	r.HandleFunc("/cards/{kind}", func(w http.ResponseWriter, req *http.Request) {
		kind := mux.Vars(req)["kind"]

		if req.URL.Query().Get("format") == "text" {
			text, err := svc.CardText(req.Context(), kind)
			if err != nil {
				writeCardError(w, err)
				return
			}
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Write([]byte(text))
			return
		}

		path, err := svc.RenderCard(req.Context(), kind)
		if err != nil {
			writeCardError(w, err)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		http.ServeFile(w, req, path)
	}).Methods("GET")

	r.HandleFunc("/status", func(w http.ResponseWriter, req *http.Request) {
		upstream := true
		if _, err := client.AuthFiles(req.Context()); err != nil {
			upstream = false
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"upstream_reachable": upstream,
			"cards":              []string{KindOverview, KindToday, KindQuota, KindDashboard},
		})
	}).Methods("GET")
}
