package command

import (
	"os"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// Topology describes the network a run simulates: the hosts and the
// entanglement links between them
type Topology struct {
	Hosts []HostConfig `toml:"hosts"`
	Links []LinkConfig `toml:"links"`
}

// HostConfig declares one host
type HostConfig struct {
	ID string `toml:"id"`
}

// LinkConfig declares a directed entanglement link and how many pairs
// to run across it
type LinkConfig struct {
	Sender   string `toml:"sender"`
	Receiver string `toml:"receiver"`
	Pairs    int    `toml:"pairs"`
}

// LoadTopology reads and validates a TOML topology file
func LoadTopology(path string) (*Topology, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read topology %s", path)
	}

	topo := &Topology{}
	if err := toml.Unmarshal(raw, topo); err != nil {
		return nil, errors.Wrap(err, "failed to Unmarshal topology")
	}

	if err := topo.validate(); err != nil {
		return nil, err
	}

	return topo, nil
}

func (t *Topology) validate() error {
	if len(t.Hosts) == 0 {
		return errors.New("topology declares no hosts")
	}

	known := map[string]bool{}
	for _, h := range t.Hosts {
		if h.ID == "" {
			return errors.New("host with empty id")
		}

		if known[h.ID] {
			return errors.Errorf("duplicate host %s", h.ID)
		}

		known[h.ID] = true
	}

	for i := range t.Links {
		link := &t.Links[i]

		if !known[link.Sender] {
			return errors.Errorf("link references unknown sender %s", link.Sender)
		}

		if !known[link.Receiver] {
			return errors.Errorf("link references unknown receiver %s", link.Receiver)
		}

		if link.Sender == link.Receiver {
			return errors.Errorf("link from %s to itself", link.Sender)
		}

		if link.Pairs <= 0 {
			link.Pairs = 1
		}
	}

	return nil
}
