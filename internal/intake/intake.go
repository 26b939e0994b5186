// Package intake validates repository URLs and extracts repository identities.
//
// The acquisition pipeline operates on an already-validated (owner, name)
// pair; this package is the only place a user-supplied URL is inspected.
package intake

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	// ErrInvalidURL indicates the input is not a well-formed repository URL.
	ErrInvalidURL = errors.New("invalid repository URL")

	// ErrUnsupportedHost indicates the URL points at a host we cannot acquire from.
	ErrUnsupportedHost = errors.New("unsupported repository host")
)

// ownerNamePattern matches the owner and repository name segments GitHub accepts.
var ownerNamePattern = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9._-]*[A-Za-z0-9])?$`)

// Identity uniquely addresses a repository by owner and name.
//
// An Identity is immutable once constructed and is only ever derived
// from a validated URL via ParseRepoURL.
type Identity struct {
	Owner string
	Name  string
}

// String returns the canonical "owner/name" form.
func (id Identity) String() string {
	return id.Owner + "/" + id.Name
}

// URL returns the canonical https web URL for the repository.
func (id Identity) URL() string {
	return fmt.Sprintf("https://github.com/%s/%s", id.Owner, id.Name)
}

// ParseRepoURL validates a repository web URL and extracts its identity.
//
// Accepted forms:
//
//	https://github.com/owner/name
//	https://github.com/owner/name.git
//	github.com/owner/name
//
// Extra path segments, query strings, and non-GitHub hosts are rejected.
func ParseRepoURL(raw string) (Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Identity{}, fmt.Errorf("%w: empty input", ErrInvalidURL)
	}

	// Tolerate scheme-less input.
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	if u.Scheme != "https" && u.Scheme != "http" {
		return Identity{}, fmt.Errorf("%w: scheme %q", ErrInvalidURL, u.Scheme)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host != "github.com" {
		return Identity{}, fmt.Errorf("%w: %s", ErrUnsupportedHost, u.Hostname())
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return Identity{}, fmt.Errorf("%w: query or fragment not allowed", ErrInvalidURL)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) != 2 {
		return Identity{}, fmt.Errorf("%w: expected /owner/name path", ErrInvalidURL)
	}

	owner := segments[0]
	name := strings.TrimSuffix(segments[1], ".git")

	if !ownerNamePattern.MatchString(owner) {
		return Identity{}, fmt.Errorf("%w: bad owner %q", ErrInvalidURL, owner)
	}
	if !ownerNamePattern.MatchString(name) {
		return Identity{}, fmt.Errorf("%w: bad repository name %q", ErrInvalidURL, name)
	}

	return Identity{Owner: owner, Name: name}, nil
}
