package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/statusboard/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   address and port of the backend server
//	-i int      online check interval in seconds
//	-l string   path of the local database
//	-t string   access token for the backend
//	-n int      notification interval in minutes
//
// Only these flags are parsed, so other components may define their own.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-i", "-l", "-t", "-n"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.LocalDBPath, "l", cfg.LocalDBPath, "local database path")
	fs.StringVar(&cfg.AccessToken, "t", cfg.AccessToken, "backend access token")
	notificationInterval := fs.Int("n", int(cfg.NotificationInterval.Minutes()), "notification interval (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	cfg.NotificationInterval = time.Duration(*notificationInterval) * time.Minute
}
