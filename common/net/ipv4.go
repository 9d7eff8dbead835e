package net

import (
	"net"

	"github.com/pkg/errors"
)

var ErrNoValidNetworkInterfaceFound = errors.New("no valid network interface found")

// AdvertiseHost picks the host to publish for a listen address.
// An explicit host in listenAddr wins; otherwise the first non-loopback IPv4
// of an interface that is up is used.
func AdvertiseHost(listenAddr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(listenAddr)
	if err != nil {
		return "", 0, errors.Wrapf(err, "invalid listen address %q", listenAddr)
	}
	port, err := net.LookupPort("tcp", portStr)
	if err != nil {
		return "", 0, errors.Wrapf(err, "invalid port in %q", listenAddr)
	}
	if ip := net.ParseIP(host); host != "" && (ip == nil || !ip.IsUnspecified()) {
		return host, port, nil
	}
	ip, err := FindAvailableIPv4Addr()
	if err != nil {
		return "", 0, err
	}
	return ip, port, nil
}

func FindAvailableIPv4Addr() (string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", errors.Wrap(err, "failed to list network interfaces")
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			return "", errors.Wrapf(err, "failed to list addresses of %s", iface.Name)
		}
		for _, addr := range addrs {
			if ipNet, ok := addr.(*net.IPNet); ok {
				if ip4 := ipNet.IP.To4(); ip4 != nil {
					return ip4.String(), nil
				}
			}
		}
	}
	return "", ErrNoValidNetworkInterfaceFound
}
