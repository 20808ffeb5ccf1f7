package api

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"

	"github.com/ubitquity/Zoltaran-Speaks/internal/store"
)

// Player handles follow the host ledger's account-name rules.
var playerNameRe = regexp.MustCompile(`^[a-z1-5.]{1,12}$`)

func validatePlayerName(name string) error {
	if !playerNameRe.MatchString(name) {
		return fmt.Errorf("invalid player name %q: want 1-12 chars of a-z, 1-5, '.'", name)
	}
	return nil
}

func parseWishType(s string) (store.WishType, error) {
	switch s {
	case "free":
		return store.WishTypeFree, nil
	case "purchased":
		return store.WishTypePurchased, nil
	default:
		return 0, fmt.Errorf("invalid wish_type %q: want \"free\" or \"purchased\"", s)
	}
}

// parseLimit reads a ?limit= query parameter with bounds.
func parseLimit(r *http.Request, def, max int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
