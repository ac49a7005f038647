package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// LinkValidator checks links from API responses before they are handed
// to an external program.
type LinkValidator struct {
	AllowLocalhost  bool
	AllowPrivateIPs bool
	MaxLength       int
}

func NewLinkValidator() *LinkValidator {
	return &LinkValidator{
		MaxLength: 2048,
	}
}

// NewPermissiveLinkValidator allows loopback and private hosts, for local
// mirrors of the service and tests.
func NewPermissiveLinkValidator() *LinkValidator {
	return &LinkValidator{
		AllowLocalhost:  true,
		AllowPrivateIPs: true,
		MaxLength:       2048,
	}
}

// Validate returns the normalized absolute http(s) URL or an error.
func (v *LinkValidator) Validate(input string) (string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", fmt.Errorf("link is empty")
	}
	if v.MaxLength > 0 && len(input) > v.MaxLength {
		return "", fmt.Errorf("link too long (max %d characters)", v.MaxLength)
	}
	// A leading dash could be taken for an option by the viewer.
	if strings.HasPrefix(input, "-") {
		return "", fmt.Errorf("link must not start with '-'")
	}
	if strings.ContainsAny(input, "<>\"'`\x00\n\r\t ") {
		return "", fmt.Errorf("link contains invalid characters")
	}

	parsed, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid link: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("link must use http or https")
	}
	if parsed.Hostname() == "" {
		return "", fmt.Errorf("link has no host")
	}
	if err := v.validateHost(parsed.Hostname()); err != nil {
		return "", err
	}
	if strings.Contains(parsed.Path, "..") {
		return "", fmt.Errorf("directory traversal patterns not allowed in link path")
	}

	return parsed.String(), nil
}

func (v *LinkValidator) validateHost(hostname string) error {
	if !v.AllowLocalhost && isLocalhost(hostname) {
		return fmt.Errorf("localhost links are not permitted")
	}
	if !v.AllowPrivateIPs {
		if ip := net.ParseIP(hostname); ip != nil && isPrivateIP(ip) {
			return fmt.Errorf("private IP addresses are not permitted")
		}
	}
	if hostname == "0.0.0.0" || hostname == "255.255.255.255" {
		return fmt.Errorf("invalid host %s", hostname)
	}
	return nil
}

func isLocalhost(hostname string) bool {
	hostname = strings.ToLower(hostname)
	return hostname == "localhost" ||
		hostname == "::1" ||
		strings.HasSuffix(hostname, ".localhost") ||
		strings.HasPrefix(hostname, "127.")
}

var privateBlocks = func() []*net.IPNet {
	var blocks []*net.IPNet
	for _, cidr := range []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"169.254.0.0/16",
		"127.0.0.0/8",
		"fc00::/7",
		"fe80::/10",
	} {
		_, block, err := net.ParseCIDR(cidr)
		if err == nil {
			blocks = append(blocks, block)
		}
	}
	return blocks
}()

func isPrivateIP(ip net.IP) bool {
	for _, block := range privateBlocks {
		if block.Contains(ip) {
			return true
		}
	}
	return false
}
