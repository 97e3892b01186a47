package services

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"
)

// ErrNonPublicTarget is returned when a webhook would reach a loopback,
// private or link-local address.
var ErrNonPublicTarget = errors.New("webhook target is not a public address")

// PublicIP reports whether ip is a globally routable unicast address.
func PublicIP(ip net.IP) bool {
	return ip != nil &&
		!ip.IsLoopback() &&
		!ip.IsPrivate() &&
		!ip.IsUnspecified() &&
		!ip.IsLinkLocalUnicast() &&
		!ip.IsLinkLocalMulticast() &&
		!ip.IsInterfaceLocalMulticast() &&
		!ip.IsMulticast()
}

// CheckWebhookURL accepts absolute http(s) URLs whose host is not a local
// name or a non-public IP literal. Hostnames are resolved at send time and
// checked again by the notifier's dialer.
func CheckWebhookURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil || (parsed.Scheme != "https" && parsed.Scheme != "http") {
		return errors.New("url must be an http or https URL")
	}

	host := strings.TrimSuffix(strings.ToLower(parsed.Hostname()), ".")
	if host == "" {
		return errors.New("url must include a host")
	}
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return ErrNonPublicTarget
	}
	if ip := net.ParseIP(host); ip != nil && !PublicIP(ip) {
		return ErrNonPublicTarget
	}
	return nil
}

func refuseNonPublic(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	if !PublicIP(net.ParseIP(host)) {
		return fmt.Errorf("%w: %s", ErrNonPublicTarget, host)
	}
	return nil
}

// publicOnlyClient refuses to connect to non-public addresses, including
// hostnames that resolve to one. It never goes through a proxy.
func publicOnlyClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: timeout, Control: refuseNonPublic}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: timeout,
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return errors.New("stopped after 5 redirects")
			}
			return CheckWebhookURL(req.URL.String())
		},
	}
}
