/*
 * Copyright 2026 The Stagegate Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package webhook

import (
	"fmt"
	"net"
	"net/url"

	"github.com/stagegate/stagegate/pkg/errors"
)

var (
	// ErrInvalidURL is returned when an endpoint URL is malformed or points
	// to an address that the server refuses to call.
	ErrInvalidURL = errors.InvalidArgument("invalid webhook URL").WithCode("ErrInvalidURL")
)

// ValidateURL checks that rawURL is an http(s) endpoint whose host does not
// resolve to a loopback, private, link-local, multicast or unspecified
// address. allowPrivate skips the address check for local deployments.
func ValidateURL(rawURL string, allowPrivate bool) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: parse url: %v", ErrInvalidURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("%w: empty hostname", ErrInvalidURL)
	}

	if allowPrivate {
		return nil
	}

	var ips []net.IP
	if ip := net.ParseIP(host); ip != nil {
		ips = []net.IP{ip}
	} else if ips, err = net.LookupIP(host); err != nil {
		return fmt.Errorf("%w: lookup %s", ErrInvalidURL, host)
	}

	for _, ip := range ips {
		if isBlocked(ip) {
			return fmt.Errorf("%w: blocked address %s", ErrInvalidURL, ip)
		}
	}

	return nil
}

func isBlocked(ip net.IP) bool {
	return ip == nil ||
		ip.IsUnspecified() ||
		ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsMulticast()
}
