package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cbodonnell/yahtzee/pkg/game/types"
	"github.com/cbodonnell/yahtzee/pkg/log"
	"github.com/cbodonnell/yahtzee/pkg/repositories"
	"github.com/cbodonnell/yahtzee/pkg/repositories/models"
	"github.com/cbodonnell/yahtzee/pkg/version"
	"github.com/skip2/go-qrcode"
)

const (
	// MaxUsernameLength is the longest accepted username
	MaxUsernameLength = 32
	// QRCodeSize is the edge length of generated QR codes in pixels
	QRCodeSize = 320
)

// Session is the part of the session manager the API calls into.
type Session interface {
	Snapshot() types.Snapshot
	Reset(ctx context.Context) types.Snapshot
}

// HallOfFame lists the all-time records.
type HallOfFame interface {
	Records(ctx context.Context) ([]models.Record, error)
}

// HandleGetUser returns the profile for ?username=, creating it on first visit.
func HandleGetUser(users repositories.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := strings.TrimSpace(r.URL.Query().Get("username"))
		if username == "" {
			http.Error(w, "Username is required", http.StatusBadRequest)
			return
		}
		if len(username) > MaxUsernameLength {
			http.Error(w, "Username is too long", http.StatusBadRequest)
			return
		}

		user, err := users.FindUser(r.Context(), username)
		if err != nil {
			if !repositories.IsNotFound(err) {
				log.Error("failed to find user: %v", err)
				http.Error(w, "Failed to find user", http.StatusInternalServerError)
				return
			}
			user, err = users.CreateUser(r.Context(), username)
			if repositories.IsUserExists(err) {
				// created by a concurrent request
				user, err = users.FindUser(r.Context(), username)
			}
			if err != nil {
				log.Error("failed to create user: %v", err)
				http.Error(w, "Failed to create user", http.StatusInternalServerError)
				return
			}
			log.Info("Created user %s", username)
		}

		writeJSON(w, user)
	}
}

func HandleGetHall(hall HallOfFame) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := hall.Records(r.Context())
		if err != nil {
			log.Error("failed to get records: %v", err)
			http.Error(w, "Failed to get records", http.StatusInternalServerError)
			return
		}
		writeJSON(w, records)
	}
}

// HandleRefresh discards the session and responds with the empty one.
func HandleRefresh(session Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, session.Reset(r.Context()))
	}
}

func HandleGetState(session Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, session.Snapshot())
	}
}

// HandleQR renders a PNG QR code pointing players at publicURL, or at the
// requesting host when publicURL is empty.
func HandleQR(publicURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target := publicURL
		if target == "" {
			scheme := "http"
			if r.TLS != nil {
				scheme = "https"
			}
			if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
				scheme = proto
			}
			target = scheme + "://" + r.Host + "/"
		}

		png, err := qrcode.Encode(target, qrcode.Medium, QRCodeSize)
		if err != nil {
			log.Error("failed to generate QR code: %v", err)
			http.Error(w, "Failed to generate QR code", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(png)
	}
}

func HandleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("ok\n"))
}

func HandleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"version": version.Get()})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
