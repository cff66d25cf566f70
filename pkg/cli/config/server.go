package config

import (
	"net"
	"strconv"

	"github.com/urfave/cli/v3"
)

// Server holds server configuration
type Server struct {
	IP   string
	Port int64
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "ip",
			Usage:       "Address to listen on",
			Value:       "0.0.0.0",
			Destination: &c.IP,
			Sources:     cli.EnvVars("CI_PREVIEW_IP", "APP_IP"),
		},
		&cli.Int64Flag{
			Name:        "port",
			Usage:       "Port to listen on",
			Value:       3000,
			Destination: &c.Port,
			Sources:     cli.EnvVars("CI_PREVIEW_PORT", "APP_PORT"),
		},
	}
}

// Addr returns the listen address
func (c *Server) Addr() string {
	return net.JoinHostPort(c.IP, strconv.FormatInt(c.Port, 10))
}
