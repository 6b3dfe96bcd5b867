package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/grandcat/zeroconf"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/resto-order-core/utils"
)

const (
	announceService = "_restoorder._tcp"
	announceDomain  = "local."
)

// Announcer advertises the order API on the local network so kitchen and POS terminals
// can find it without configuration.
type Announcer struct {
	server *zeroconf.Server
}

// Announce registers the service for the given ":port" or "port" listen address.
func Announce(instance, listenAddr string) (*Announcer, error) {
	port, err := strconv.Atoi(strings.TrimPrefix(listenAddr, ":"))
	if err != nil {
		return nil, fmt.Errorf("mdns: invalid port %q: %w", listenAddr, err)
	}

	server, err := zeroconf.Register(instance, announceService, announceDomain, port, []string{"version=1", "ws=/ws"}, nil)
	if err != nil {
		return nil, fmt.Errorf("mdns: register: %w", err)
	}
	utils.InfoLogger.WithFields(logrus.Fields{
		"instance": instance,
		"service":  announceService,
		"port":     port,
	}).Info("mdns announcement started")
	return &Announcer{server: server}, nil
}

func (a *Announcer) Shutdown() {
	if a == nil || a.server == nil {
		return
	}
	a.server.Shutdown()
	utils.InfoLogger.Info("mdns announcement stopped")
}
