package jwt

import "time"

// getPayload extracts payload from token claims
func getPayload(claims map[string]any) (map[string]any, bool) {
	if payload, ok := claims["payload"].(map[string]any); ok {
		return payload, true
	}
	return nil, false
}

// getString safely extracts string value from payload
func getString(payload map[string]any, key string) string {
	if val, ok := payload[key].(string); ok {
		return val
	}
	return ""
}

// GetTokenIDFromToken extracts JWT ID (jti) from token claims
func GetTokenIDFromToken(claims map[string]any) string {
	if jti, ok := claims["jti"].(string); ok {
		return jti
	}
	return ""
}

// GetSubjectFromToken extracts subject (sub) from token claims
func GetSubjectFromToken(claims map[string]any) string {
	if sub, ok := claims["sub"].(string); ok {
		return sub
	}
	return ""
}

// GetExpirationFromToken extracts expiration time from token claims
func GetExpirationFromToken(claims map[string]any) time.Time {
	if exp, ok := claims["exp"].(float64); ok && exp > 0 {
		return time.Unix(int64(exp), 0)
	}
	return time.Time{}
}

// GetUserIDFromToken extracts user ID from token claims
func GetUserIDFromToken(claims map[string]any) string {
	if payload, ok := getPayload(claims); ok {
		return getString(payload, "user_id")
	}
	return ""
}

// GetUsernameFromToken extracts username from token claims
func GetUsernameFromToken(claims map[string]any) string {
	if payload, ok := getPayload(claims); ok {
		return getString(payload, "username")
	}
	return ""
}

// GetEmailFromToken extracts email from token claims
func GetEmailFromToken(claims map[string]any) string {
	if payload, ok := getPayload(claims); ok {
		return getString(payload, "email")
	}
	return ""
}
