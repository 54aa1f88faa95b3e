// Package forward parses the compact tunnel-spec grammar used in the
// tunnels section of config.yaml.
//
// Each token describes one forward:
//
//	L:localPort:remoteHost:remotePort   local forward
//	D:localPort                         dynamic (SOCKS) forward
//	R:remotePort:localHost:localPort    remote forward
//
// A group's raw spec text is split on whitespace and each token is parsed
// independently; one malformed token never invalidates its siblings.
package forward

import (
	"fmt"
	"strings"

	"tunnelmux/internal/model"
	"tunnelmux/internal/util"
)

// ParseError describes one rejected spec token with enough context to fix
// the configuration without reading source code.
type ParseError struct {
	Group string // owning tunnel group, for error attribution
	Token string // the offending spec text
	Rule  string // the violated rule
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("group %q: spec %q: %s", e.Group, e.Token, e.Rule)
}

func errf(group, token, format string, args ...any) *ParseError {
	return &ParseError{Group: group, Token: token, Rule: fmt.Sprintf(format, args...)}
}

// Parse converts a single spec token into a validated ForwardSpec.
func Parse(group, token string) (model.ForwardSpec, error) {
	parts := strings.Split(token, ":")
	switch parts[0] {
	case "L":
		if len(parts) != 4 {
			return model.ForwardSpec{}, errf(group, token, "local forward needs L:localPort:remoteHost:remotePort")
		}
		lp, err := util.ParsePort(parts[1])
		if err != nil {
			return model.ForwardSpec{}, errf(group, token, "local %v", err)
		}
		host := parts[2]
		if host == "" {
			return model.ForwardSpec{}, errf(group, token, "remote host must not be empty")
		}
		rp, err := util.ParsePort(parts[3])
		if err != nil {
			return model.ForwardSpec{}, errf(group, token, "remote %v", err)
		}
		return model.ForwardSpec{Kind: model.ForwardLocal, LocalPort: lp, RemoteHost: host, RemotePort: rp}, nil

	case "D":
		if len(parts) != 2 {
			return model.ForwardSpec{}, errf(group, token, "dynamic forward needs D:localPort")
		}
		lp, err := util.ParsePort(parts[1])
		if err != nil {
			return model.ForwardSpec{}, errf(group, token, "local %v", err)
		}
		return model.ForwardSpec{Kind: model.ForwardDynamic, LocalPort: lp}, nil

	case "R":
		if len(parts) != 4 {
			return model.ForwardSpec{}, errf(group, token, "remote forward needs R:remotePort:localHost:localPort")
		}
		rp, err := util.ParsePort(parts[1])
		if err != nil {
			return model.ForwardSpec{}, errf(group, token, "remote %v", err)
		}
		host := parts[2]
		if host == "" {
			return model.ForwardSpec{}, errf(group, token, "local host must not be empty")
		}
		lp, err := util.ParsePort(parts[3])
		if err != nil {
			return model.ForwardSpec{}, errf(group, token, "local %v", err)
		}
		return model.ForwardSpec{Kind: model.ForwardRemote, RemotePort: rp, LocalHost: host, LocalPort: lp}, nil
	}
	return model.ForwardSpec{}, errf(group, token, "unknown forward type %q (want L, D or R)", parts[0])
}

// ParseGroup parses a group's raw spec text. All per-token errors are
// collected rather than stopping at the first; the returned specs appear
// in token order. A group is usable as long as at least one token parsed.
func ParseGroup(group, raw string) ([]model.ForwardSpec, []error) {
	var (
		specs []model.ForwardSpec
		errs  []error
	)
	for _, token := range strings.Fields(raw) {
		spec, err := Parse(group, token)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		specs = append(specs, spec)
	}
	return specs, errs
}
