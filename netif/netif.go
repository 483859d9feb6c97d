// Package netif brings up the packet data interface once ofono has
// activated a context.
package netif

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/Wifx/gonetworkmanager/v3"
	"github.com/charmbracelet/log"
	"github.com/vishvananda/netlink"
)

var ErrNoAddress = errors.New("netif: no address")

// Settings is the IPv4 part of a ConnectionContext "Settings" property.
type Settings struct {
	Interface string
	Address   string
	Netmask   string
	Gateway   string
}

// Prefix returns the address in CIDR form. A missing netmask gives a host
// route.
func (s Settings) Prefix() (string, error) {
	ip := net.ParseIP(s.Address).To4()
	if ip == nil {
		return "", fmt.Errorf("%w: %q", ErrNoAddress, s.Address)
	}
	ones := 32
	if s.Netmask != "" {
		mask := net.IPMask(net.ParseIP(s.Netmask).To4())
		if m, _ := mask.Size(); m > 0 {
			ones = m
		}
	}
	return fmt.Sprintf("%s/%d", ip, ones), nil
}

type Configurer interface {
	Configure(ctx context.Context, s Settings) error
}

// Netlink assigns the address, brings the link up and installs a default
// route through it.
type Netlink struct {
	// Unmanage asks NetworkManager to leave the interface alone first.
	Unmanage bool
	Logger   *log.Logger
}

func (n *Netlink) logger() *log.Logger {
	if n.Logger == nil {
		return log.Default()
	}
	return n.Logger
}

func (n *Netlink) Configure(_ context.Context, s Settings) error {
	prefix, err := s.Prefix()
	if err != nil {
		return err
	}
	if n.Unmanage {
		if err := unmanage(s.Interface); err != nil {
			n.logger().Warn("🌐 could not unmanage interface", "iface", s.Interface, "err", err)
		}
	}

	link, err := netlink.LinkByName(s.Interface)
	if err != nil {
		return fmt.Errorf("find %s: %w", s.Interface, err)
	}
	addr, err := netlink.ParseAddr(prefix)
	if err != nil {
		return fmt.Errorf("parse %s: %w", prefix, err)
	}
	if err := netlink.AddrReplace(link, addr); err != nil {
		return fmt.Errorf("set address on %s: %w", s.Interface, err)
	}
	if err := netlink.LinkSetUp(link); err != nil {
		return fmt.Errorf("bring up %s: %w", s.Interface, err)
	}

	route := &netlink.Route{LinkIndex: link.Attrs().Index, Scope: netlink.SCOPE_LINK}
	if gw := net.ParseIP(s.Gateway); gw != nil {
		route.Gw = gw
		route.Scope = netlink.SCOPE_UNIVERSE
	}
	if err := netlink.RouteReplace(route); err != nil {
		return fmt.Errorf("default route via %s: %w", s.Interface, err)
	}
	n.logger().Info("🌐 data interface up", "iface", s.Interface, "addr", prefix)
	return nil
}

func unmanage(iface string) error {
	nm, err := gonetworkmanager.NewNetworkManager()
	if err != nil {
		return err
	}
	dev, err := nm.GetDeviceByIpIface(iface)
	if err != nil {
		return err
	}
	managed, err := dev.GetPropertyManaged()
	if err != nil || !managed {
		return err
	}
	return dev.SetPropertyManaged(false)
}
