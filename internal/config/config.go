// Package config assembles the server's runtime configuration from CLI
// flags, using the standard library's flag package; see DESIGN.md.
package config

import (
	"flag"
	"fmt"
	"io"
)

// Config is the fully-parsed set of startup parameters.
type Config struct {
	HostsDirs  []string // -A <dir>, repeatable
	HostsFiles []string // -a <file>, repeatable
	ZoneDirs   []string // -Z <dir>, repeatable
	ZoneFiles  []string // -z <file>, repeatable

	CacheSize      int    // --cache-size
	CacheMaxTTL    uint32 // not a CLI flag; fixed operational ceiling
	Interface      string // --interface
	MetricsAddress string // --metrics-address
}

const defaultCacheSize = 10000
const defaultCacheMaxTTL = 86400
const defaultInterface = ""
const defaultPort = "53"

// stringList accumulates repeated occurrences of a flag into a slice,
// the idiomatic way to let -a/-A/-z/-Z be specified more than once.
type stringList []string

func (s *stringList) String() string { return fmt.Sprint([]string(*s)) }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// Parse builds a Config from args (os.Args[1:] in production, a fixed
// slice in tests), writing usage output to errOut.
func Parse(args []string, errOut io.Writer) (Config, error) {
	fs := flag.NewFlagSet("hearthd", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var hostsDirs, hostsFiles, zoneDirs, zoneFiles stringList
	fs.Var(&hostsDirs, "A", "load every file in `dir` as a hosts file (repeatable)")
	fs.Var(&hostsFiles, "a", "load `file` as a hosts file (repeatable)")
	fs.Var(&zoneDirs, "Z", "load every file in `dir` as a zone file (repeatable)")
	fs.Var(&zoneFiles, "z", "load `file` as a zone file (repeatable)")

	cacheSize := fs.Int("cache-size", defaultCacheSize, "maximum cache entry count")
	iface := fs.String("interface", defaultInterface, "bind address for DNS listeners")
	metricsAddr := fs.String("metrics-address", "", "HTTP address for the metrics exporter")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	return Config{
		HostsDirs:      hostsDirs,
		HostsFiles:     hostsFiles,
		ZoneDirs:       zoneDirs,
		ZoneFiles:      zoneFiles,
		CacheSize:      *cacheSize,
		CacheMaxTTL:    defaultCacheMaxTTL,
		Interface:      *iface,
		MetricsAddress: *metricsAddr,
	}, nil
}

// ListenAddress returns the host:port the DNS listeners should bind.
func (c Config) ListenAddress() string {
	return c.Interface + ":" + defaultPort
}
