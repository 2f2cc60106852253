// Package videoref turns a user supplied video reference into something a player can load.
package videoref

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

type Kind string

const (
	KindYoutube Kind = "youtube"
	KindDrive   Kind = "drive"
	KindGeneric Kind = "generic"
)

var ErrUnresolvable = errors.New("video reference cannot be resolved")

type Ref struct {
	Kind Kind
	// Id is the provider specific identifier. For generic links it is the normalized URL.
	Id string
}

var (
	youtubeUrlRe = regexp.MustCompile(`(?i)^.*(youtu\.be/|v/|u/\w/|embed/|shorts/|watch\?v=|&v=)([^#&?/]*).*`)
	youtubeIdRe  = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
	driveFileRe  = regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`)
	driveQueryRe = regexp.MustCompile(`[?&]id=([a-zA-Z0-9_-]+)`)
)

func Resolve(raw string) (Ref, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Ref{}, ErrUnresolvable
	}

	if youtubeIdRe.MatchString(raw) {
		return Ref{Kind: KindYoutube, Id: raw}, nil
	}

	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Ref{}, ErrUnresolvable
	}

	host := strings.ToLower(u.Hostname())
	switch {
	case isYoutubeHost(host):
		return resolveYoutube(raw)
	case host == "drive.google.com":
		return resolveDrive(raw)
	default:
		return Ref{Kind: KindGeneric, Id: u.String()}, nil
	}
}

func isYoutubeHost(host string) bool {
	return host == "youtu.be" || host == "youtube.com" || strings.HasSuffix(host, ".youtube.com")
}

func resolveYoutube(raw string) (Ref, error) {
	match := youtubeUrlRe.FindStringSubmatch(raw)
	if len(match) < 3 || !youtubeIdRe.MatchString(match[2]) {
		return Ref{}, ErrUnresolvable
	}

	return Ref{Kind: KindYoutube, Id: match[2]}, nil
}

func resolveDrive(raw string) (Ref, error) {
	if match := driveFileRe.FindStringSubmatch(raw); match != nil {
		return Ref{Kind: KindDrive, Id: match[1]}, nil
	}
	if match := driveQueryRe.FindStringSubmatch(raw); match != nil {
		return Ref{Kind: KindDrive, Id: match[1]}, nil
	}

	return Ref{}, ErrUnresolvable
}
