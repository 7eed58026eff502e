package server

import (
	"fmt"
	"net"
	"strconv"
)

// lanIPs returns the IPv4 addresses of interfaces that are up and not loopback.
func lanIPs() ([]string, error) {
	var ips []string

	interfaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range interfaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip != nil && ip.To4() != nil && !ip.IsLoopback() {
				ips = append(ips, ip.String())
			}
		}
	}

	return ips, nil
}

// FeedURLs lists the WebSocket URLs clients can dial for a feed bound to addr.
// A wildcard bind yields localhost plus one URL per LAN address.
func FeedURLs(addr net.Addr) []string {
	tcp, ok := addr.(*net.TCPAddr)
	if !ok {
		return nil
	}
	port := strconv.Itoa(tcp.Port)
	if tcp.IP != nil && !tcp.IP.IsUnspecified() {
		return []string{feedURL(tcp.IP.String(), port)}
	}

	urls := []string{feedURL("localhost", port)}
	ips, err := lanIPs()
	if err != nil {
		return urls
	}
	for _, ip := range ips {
		urls = append(urls, feedURL(ip, port))
	}
	return urls
}

func feedURL(host, port string) string {
	return fmt.Sprintf("ws://%s/ws", net.JoinHostPort(host, port))
}
