package domain

import (
	"fmt"
	"strings"
)

type SiteKey string

// ChannelProfile describes which temperature channels a plant exports.
type ChannelProfile string

const (
	// ProfileDualReactor plants report two independent reactor temperatures.
	ProfileDualReactor ChannelProfile = "dual-reactor"
	// ProfileSingleProcess plants report one process temperature. Some
	// exports duplicate it into a second column for chart rendering; it is
	// still one semantic channel and is counted once.
	ProfileSingleProcess ChannelProfile = "single-process"
)

type Site struct {
	Key     SiteKey        `yaml:"key"`
	Name    string         `yaml:"name"`
	Tokens  []string       `yaml:"tokens"`
	Profile ChannelProfile `yaml:"profile"`
}

// Channels returns the channel set consulted when bucketing this site's rows.
func (s Site) Channels() []Channel {
	if s.Profile == ProfileSingleProcess {
		return []Channel{ChannelProcess}
	}
	return []Channel{ChannelReactor1, ChannelReactor2}
}

// SiteRegistry is the closed set of known production sites. Upload site
// inference is an explicit token table lookup, never a guess.
type SiteRegistry struct {
	sites []Site
	byKey map[SiteKey]Site
}

func NewSiteRegistry(sites []Site) (*SiteRegistry, error) {
	if len(sites) == 0 {
		return nil, fmt.Errorf("site registry requires at least one site")
	}
	byKey := make(map[SiteKey]Site, len(sites))
	for _, site := range sites {
		if site.Key == "" {
			return nil, fmt.Errorf("site with empty key")
		}
		if _, dup := byKey[site.Key]; dup {
			return nil, fmt.Errorf("duplicate site key %q", site.Key)
		}
		if len(site.Tokens) == 0 {
			return nil, fmt.Errorf("site %q has no filename tokens", site.Key)
		}
		switch site.Profile {
		case ProfileDualReactor, ProfileSingleProcess:
		default:
			return nil, fmt.Errorf("site %q has unknown channel profile %q", site.Key, site.Profile)
		}
		byKey[site.Key] = site
	}
	return &SiteRegistry{sites: sites, byKey: byKey}, nil
}

// DefaultSites is the built-in plant table; deployments can override it with
// a YAML file via configuration.
func DefaultSites() []Site {
	return []Site{
		{
			Key:     "ilmtal",
			Name:    "Pyrolysewerk Ilmtal",
			Tokens:  []string{"ilmtal", "ilm"},
			Profile: ProfileDualReactor,
		},
		{
			Key:     "schwand",
			Name:    "Kohlehof Schwand",
			Tokens:  []string{"schwand", "schw"},
			Profile: ProfileSingleProcess,
		},
	}
}

// ResolveUploadSite matches the filename against each site's tokens,
// case-insensitive substring, first match wins. No match means the caller
// must discard the upload rather than default a site.
func (r *SiteRegistry) ResolveUploadSite(filename string) (Site, bool) {
	needle := strings.ToLower(filename)
	for _, site := range r.sites {
		for _, token := range site.Tokens {
			if token == "" {
				continue
			}
			if strings.Contains(needle, strings.ToLower(token)) {
				return site, true
			}
		}
	}
	return Site{}, false
}

func (r *SiteRegistry) Get(key SiteKey) (Site, bool) {
	site, ok := r.byKey[key]
	return site, ok
}

func (r *SiteRegistry) All() []Site {
	out := make([]Site, len(r.sites))
	copy(out, r.sites)
	return out
}
