package config

import (
	"time"

	"github.com/spf13/viper"
)

// Auth auth config struct
type Auth struct {
	JWT *JWT
	// SessionKey names the local slot entry holding the session token.
	SessionKey string
}

// getAuth returns the auth config.
func getAuth(v *viper.Viper) *Auth {
	return &Auth{
		JWT:        getJWT(v),
		SessionKey: getStringOrDefault(v, "auth.session_key", "session"),
	}
}

// JWT jwt config struct
type JWT struct {
	Secret string
	Expire time.Duration
}

// getJWT returns the jwt config.
func getJWT(v *viper.Viper) *JWT {
	return &JWT{
		Secret: v.GetString("auth.jwt.secret"),
		Expire: getDurationOrDefault(v, "auth.jwt.expire", 7*24*time.Hour),
	}
}
