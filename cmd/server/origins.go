package main

import (
	"net/url"
)

func hostPattern(origin string) string {
	if origin == "*" {
		return origin
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return origin
	}
	return u.Host
}
