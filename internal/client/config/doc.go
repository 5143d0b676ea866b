// Package config loads runtime configuration for the StatusBoard terminal
// client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. STATUSBOARD_* environment variables.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   address:port of the backend gRPC endpoint
//	-i int      online status check interval (seconds)
//	-l string   local database path
//	-t string   backend access token
//	-n int      notification interval (minutes)
//
// Environment
//
//	STATUSBOARD_SERVER_ADDR, STATUSBOARD_ONLINE_CHECK_INTERVAL ("3s"),
//	STATUSBOARD_DB_PATH, STATUSBOARD_ACCESS_TOKEN, STATUSBOARD_SECRET,
//	STATUSBOARD_USER_AGENT, STATUSBOARD_NOTIFICATION_INTERVAL ("1h"),
//	STATUSBOARD_EXPORT_DIR, STATUSBOARD_LOG_LEVEL, STATUSBOARD_LOG_FILE
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "local_db_path": "statusboard.db",
//	  "notification_interval": "1h",
//	  "export_dir": "exports"
//	}
package config
