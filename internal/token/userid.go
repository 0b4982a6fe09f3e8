package token

import (
	"strconv"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// userIDKeys is the ordered fallback chain for the user id claim. Older
// token issuers in the platform used different spellings; the first key
// that parses wins.
var userIDKeys = []string{"userId", "user_id", "id"}

// ExtractUserID tries each known user-id claim key in order, tolerating
// string, integer and float encodings. A claim that is present but does not
// parse is skipped, not fatal; all-keys-fail yields ok=false so callers can
// proceed without a user id.
func ExtractUserID(claims jwtv5.MapClaims) (int64, bool) {
	for _, key := range userIDKeys {
		v, ok := claims[key]
		if !ok || v == nil {
			continue
		}
		if id, ok := parseUserID(v); ok {
			return id, true
		}
	}
	return 0, false
}

func parseUserID(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case string:
		id, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, false
		}
		return id, true
	}
	return 0, false
}
