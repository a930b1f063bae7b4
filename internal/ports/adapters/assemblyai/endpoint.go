package assemblyai

import (
	"fmt"
	"net/url"
	"strings"
)

// Region selects one of AssemblyAI's public data residency endpoints.
type Region string

const (
	RegionUS Region = "us"
	RegionEU Region = "eu"
)

var regionHosts = map[Region]string{
	RegionUS: "api.assemblyai.com",
	RegionEU: "api.eu.assemblyai.com",
}

// ParseRegion accepts "us", "eu" or empty (us).
func ParseRegion(v string) (Region, error) {
	r := Region(strings.ToLower(strings.TrimSpace(v)))
	if r == "" {
		return RegionUS, nil
	}
	if _, ok := regionHosts[r]; !ok {
		return "", fmt.Errorf("assemblyai region %q: want us or eu", v)
	}
	return r, nil
}

// Endpoint is the API root requests are sent to. Region is empty when URL
// points at a proxy rather than a public AssemblyAI host.
type Endpoint struct {
	Region Region
	URL    string
}

// ResolveEndpoint picks the API root for region. A non-empty override wins
// but must be an https URL without credentials, query or fragment, on a
// public AssemblyAI host of the same region or on one of proxyHosts.
func ResolveEndpoint(region, override string, proxyHosts []string) (Endpoint, error) {
	r, err := ParseRegion(region)
	if err != nil {
		return Endpoint{}, err
	}
	override = strings.TrimRight(strings.TrimSpace(override), "/")
	if override == "" {
		return Endpoint{Region: r, URL: "https://" + regionHosts[r]}, nil
	}

	u, err := url.Parse(override)
	switch {
	case err != nil:
		return Endpoint{}, fmt.Errorf("assemblyai endpoint: %w", err)
	case !strings.EqualFold(u.Scheme, "https"):
		return Endpoint{}, fmt.Errorf("assemblyai endpoint %q: https is required", override)
	case u.Hostname() == "":
		return Endpoint{}, fmt.Errorf("assemblyai endpoint %q: host is required", override)
	case u.User != nil:
		return Endpoint{}, fmt.Errorf("assemblyai endpoint %q: credentials in URL are not allowed", override)
	case u.RawQuery != "" || u.Fragment != "" || u.ForceQuery:
		return Endpoint{}, fmt.Errorf("assemblyai endpoint %q: query or fragment is not allowed", override)
	}

	host := strings.ToLower(u.Hostname())
	if hr, ok := regionOf(host); ok {
		// An explicit region must agree with the public host it names.
		if region != "" && hr != r {
			return Endpoint{}, fmt.Errorf("assemblyai endpoint %q: host belongs to region %s, not %s", override, hr, r)
		}
		return Endpoint{Region: hr, URL: override}, nil
	}
	for _, p := range proxyHosts {
		if hostOnly(p) == host {
			return Endpoint{URL: override}, nil
		}
	}
	return Endpoint{}, fmt.Errorf("assemblyai endpoint %q: host %q is not an AssemblyAI host and not listed in ASSEMBLYAI_ALLOWED_HOSTS", override, host)
}

func regionOf(host string) (Region, bool) {
	for r, h := range regionHosts {
		if h == host {
			return r, true
		}
	}
	return "", false
}

// hostOnly reduces "https://proxy.internal:8443/" style entries to a bare host.
func hostOnly(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if i := strings.Index(v, "://"); i >= 0 {
		v = v[i+3:]
	}
	if i := strings.IndexAny(v, ":/"); i >= 0 {
		v = v[:i]
	}
	return v
}
