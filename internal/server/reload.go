package server

import (
	"os"
	"path/filepath"

	"github.com/hearthdns/hearth/internal/errors"
	"github.com/hearthdns/hearth/internal/hostsfile"
	"github.com/hearthdns/hearth/internal/wire"
	"github.com/hearthdns/hearth/internal/zone"
	"github.com/hearthdns/hearth/internal/zonefile"
)

// Reload re-reads every configured hosts/zone source and, only if every
// file is at least readable, atomically replaces the live zone store. A
// malformed record line inside a file is logged and skipped; it never
// aborts the reload. An unreadable file aborts the whole reload, leaving
// the previous snapshot live.
func (s *Server) Reload() error {
	authoritative, hints, err := s.loadZones()
	if err != nil {
		return err
	}
	hostRRs, err := s.loadHosts()
	if err != nil {
		return err
	}

	s.Store.Load(authoritative, hints)
	for _, rr := range hostRRs {
		s.Cache.Put(rr)
	}
	s.Logger.Info("reload complete", "authoritative_zones", len(authoritative), "hint_zones", len(hints), "host_records", len(hostRRs))
	return nil
}

func (s *Server) loadZones() ([]*zone.Zone, []*zone.Zone, error) {
	byOrigin := make(map[string]*zone.Zone)

	for _, path := range collectFiles(s.Config.ZoneFiles, s.Config.ZoneDirs) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, &errors.ConfigError{Operation: "load zone file", Source: path, Err: err}
		}
		result := zonefile.Parse(string(data), wire.Root)
		for _, e := range result.Errors {
			s.Logger.Warn("zone file line skipped", "file", path, "error", e)
		}
		key := result.Zone.Origin.Key()
		if existing, ok := byOrigin[key]; ok {
			existing.Merge(result.Zone)
		} else {
			byOrigin[key] = result.Zone
		}
	}

	var authoritative, hints []*zone.Zone
	for _, z := range byOrigin {
		if z.Authoritative() {
			authoritative = append(authoritative, z)
		} else {
			hints = append(hints, z)
		}
	}
	return authoritative, hints, nil
}

func (s *Server) loadHosts() ([]wire.RR, error) {
	var out []wire.RR
	for _, path := range collectFiles(s.Config.HostsFiles, s.Config.HostsDirs) {
		f, err := os.Open(path)
		if err != nil {
			return nil, &errors.ConfigError{Operation: "load hosts file", Source: path, Err: err}
		}
		result := hostsfile.Parse(f)
		f.Close()
		for _, e := range result.Errors {
			s.Logger.Warn("hosts file line skipped", "file", path, "error", e)
		}
		out = append(out, result.Records...)
	}
	return out, nil
}

// collectFiles expands directory flags into their member files and
// appends the explicit single-file flags.
func collectFiles(files, dirs []string) []string {
	out := append([]string(nil), files...)
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			out = append(out, filepath.Join(dir, entry.Name()))
		}
	}
	return out
}
