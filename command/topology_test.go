package command

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTopology(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "topology.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	return path
}

func TestLoadTopology(t *testing.T) {
	path := writeTopology(t, `
[[hosts]]
id = "alice"

[[hosts]]
id = "bob"

[[links]]
sender = "alice"
receiver = "bob"
pairs = 4
`)

	topo, err := LoadTopology(path)
	require.NoError(t, err)
	require.Len(t, topo.Hosts, 2)
	require.Len(t, topo.Links, 1)
	require.Equal(t, 4, topo.Links[0].Pairs)
}

func TestLoadTopologyDefaultsPairs(t *testing.T) {
	path := writeTopology(t, `
[[hosts]]
id = "alice"

[[hosts]]
id = "bob"

[[links]]
sender = "alice"
receiver = "bob"
`)

	topo, err := LoadTopology(path)
	require.NoError(t, err)
	require.Equal(t, 1, topo.Links[0].Pairs)
}

func TestLoadTopologyUnknownHost(t *testing.T) {
	path := writeTopology(t, `
[[hosts]]
id = "alice"

[[links]]
sender = "alice"
receiver = "charlie"
`)

	_, err := LoadTopology(path)
	require.ErrorContains(t, err, "unknown receiver")
}

func TestLoadTopologyDuplicateHost(t *testing.T) {
	path := writeTopology(t, `
[[hosts]]
id = "alice"

[[hosts]]
id = "alice"
`)

	_, err := LoadTopology(path)
	require.ErrorContains(t, err, "duplicate host")
}

func TestLoadTopologyNoHosts(t *testing.T) {
	path := writeTopology(t, `links = []`)

	_, err := LoadTopology(path)
	require.ErrorContains(t, err, "no hosts")
}

func TestLoadTopologyMissingFile(t *testing.T) {
	_, err := LoadTopology(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestLoadTopologySelfLink(t *testing.T) {
	path := writeTopology(t, `
[[hosts]]
id = "alice"

[[links]]
sender = "alice"
receiver = "alice"
`)

	_, err := LoadTopology(path)
	require.ErrorContains(t, err, "to itself")
}
