// Package config loads feedsync configuration with Viper: a YAML, JSON or
// TOML file plus FEEDSYNC_* environment overrides, reloaded on change by
// Watch.
//
// Example YAML:
//
//	app_name: feedsync
//	run_mode: debug
//	logger:
//	  level: 4
//	  format: text
//	  output: stderr
//	data:
//	  driver: mongodb
//	  timeout: 10s
//	  mongodb:
//	    master:
//	      uri: mongodb://localhost:27017
//	    database: feedsync
//	  redis:
//	    addr: localhost:6379
//	  local:
//	    backend: sqlite
//	    path: $HOME/.feedsync/local.db
//	  meilisearch:
//	    host: http://localhost:7700
//	    index: users
//	auth:
//	  jwt:
//	    secret: change-me
//	    expire: 168h
//	feed:
//	  page_size: 5
//	  notification_size: 10
//	  fetch_timeout: 10s
//	  toggle_mode: atomic
//	  follow_compensation: true
//	breaker:
//	  timeout: 3s
//	observes:
//	  sentry:
//	    endpoint: ""
//	  tracer:
//	    endpoint: ""
package config
