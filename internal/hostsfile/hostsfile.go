// Package hostsfile parses the hosts-file shorthand: one address
// followed by one or more hostnames per line, each producing an A or
// AAAA record.
package hostsfile

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/hearthdns/hearth/internal/protocol"
	"github.com/hearthdns/hearth/internal/wire"
)

const defaultTTL = 300

// ParseResult is the outcome of loading one hosts file: the records it
// produced, plus a per-line failure count so the caller can log a
// summary without aborting the whole load.
type ParseResult struct {
	Records []wire.RR
	Failed  int
	Errors  []error
}

// Parse reads hosts-file formatted text from r and returns one A/AAAA
// record per hostname on each valid line. Malformed lines are skipped
// and counted in Failed; the remainder of the file still loads.
func Parse(r io.Reader) ParseResult {
	var result ParseResult
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Errorf("line %d: expected address and at least one hostname", lineNo))
			continue
		}

		ip := net.ParseIP(fields[0])
		if ip == nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Errorf("line %d: invalid address %q", lineNo, fields[0]))
			continue
		}

		var rtype protocol.Type
		var rdata wire.Record
		if ip4 := ip.To4(); ip4 != nil {
			rtype = protocol.TypeA
			rdata = wire.ARecord{Addr: ip4}
		} else {
			rtype = protocol.TypeAAAA
			rdata = wire.AAAARecord{Addr: ip}
		}
		data, err := wire.PackRecord(rdata)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Errorf("line %d: %w", lineNo, err))
			continue
		}

		for _, host := range fields[1:] {
			name, err := wire.NewName(host)
			if err != nil {
				result.Failed++
				result.Errors = append(result.Errors, fmt.Errorf("line %d: invalid hostname %q: %w", lineNo, host, err))
				continue
			}
			result.Records = append(result.Records, wire.RR{
				Name:   name,
				Type:   rtype,
				Class:  protocol.ClassIN,
				TTL:    defaultTTL,
				Data:   data,
				Record: rdata,
			})
		}
	}

	return result
}
