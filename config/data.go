package config

import (
	"time"

	"github.com/spf13/viper"
)

// Data represents the data configuration
type Data struct {
	// Driver selects the document store: mongodb or memory.
	Driver      string
	MongoDB     *MongoDB
	Redis       *Redis
	Local       *Local
	Meilisearch *Meilisearch
	// Timeout bounds each store operation.
	Timeout time.Duration
}

// MongoNode mongodb node config struct
type MongoNode struct {
	URI    string
	Weight int
}

// MongoDB mongodb config struct
type MongoDB struct {
	Master   *MongoNode
	Slaves   []*MongoNode
	Strategy string
	Database string
	// PollInterval is the fallback refresh period for live subscriptions
	// when change streams are unavailable (standalone servers).
	PollInterval time.Duration
}

// Redis redis config struct
type Redis struct {
	Addr         string
	Username     string
	Password     string
	Db           int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	DialTimeout  time.Duration
}

// Local configures the persisted key-value slot.
type Local struct {
	// Backend is sqlite, redis or memory.
	Backend string
	Path    string
}

// Meilisearch meilisearch config struct
type Meilisearch struct {
	Host   string
	APIKey string
	Index  string
}

func getDataConfig(v *viper.Viper) *Data {
	return &Data{
		Driver:      getStringOrDefault(v, "data.driver", "memory"),
		MongoDB:     getMongoConfig(v),
		Redis:       getRedisConfig(v),
		Local:       getLocalConfig(v),
		Meilisearch: getMeilisearchConfig(v),
		Timeout:     getDurationOrDefault(v, "data.timeout", 10*time.Second),
	}
}

func getMongoConfig(v *viper.Viper) *MongoDB {
	var slaves []*MongoNode
	raw, _ := v.Get("data.mongodb.slaves").([]any)
	for _, s := range raw {
		m, ok := s.(map[string]any)
		if !ok {
			continue
		}
		node := &MongoNode{}
		if uri, ok := m["uri"].(string); ok {
			node.URI = uri
		}
		switch w := m["weight"].(type) {
		case int:
			node.Weight = w
		case float64:
			node.Weight = int(w)
		}
		slaves = append(slaves, node)
	}

	return &MongoDB{
		Master: &MongoNode{
			URI: v.GetString("data.mongodb.master.uri"),
		},
		Slaves:       slaves,
		Strategy:     v.GetString("data.mongodb.strategy"),
		Database:     getStringOrDefault(v, "data.mongodb.database", "feedsync"),
		PollInterval: getDurationOrDefault(v, "data.mongodb.poll_interval", 5*time.Second),
	}
}

func getRedisConfig(v *viper.Viper) *Redis {
	return &Redis{
		Addr:         v.GetString("data.redis.addr"),
		Username:     v.GetString("data.redis.username"),
		Password:     v.GetString("data.redis.password"),
		Db:           v.GetInt("data.redis.db"),
		ReadTimeout:  getDurationOrDefault(v, "data.redis.read_timeout", 3*time.Second),
		WriteTimeout: getDurationOrDefault(v, "data.redis.write_timeout", 3*time.Second),
		DialTimeout:  getDurationOrDefault(v, "data.redis.dial_timeout", 5*time.Second),
	}
}

func getLocalConfig(v *viper.Viper) *Local {
	return &Local{
		Backend: getStringOrDefault(v, "data.local.backend", "sqlite"),
		Path:    getStringOrDefault(v, "data.local.path", "$HOME/.feedsync/local.db"),
	}
}

func getMeilisearchConfig(v *viper.Viper) *Meilisearch {
	return &Meilisearch{
		Host:   v.GetString("data.meilisearch.host"),
		APIKey: v.GetString("data.meilisearch.api_key"),
		Index:  getStringOrDefault(v, "data.meilisearch.index", "users"),
	}
}
