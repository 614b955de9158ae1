package confkit_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptodata-api/pkg/confkit"
)

func TestResolvePath(t *testing.T) {
	t.Setenv("VENUE_DIR", "venues")

	tests := []struct {
		name string
		base string
		file string
		want string
	}{
		{name: "absolute", base: "/srv/etc", file: "/opt/venues.yaml", want: "/opt/venues.yaml"},
		{name: "relative", base: "/srv/etc", file: "venues.yaml", want: "/srv/etc/venues.yaml"},
		{name: "env expanded", base: "/srv/etc", file: "${VENUE_DIR}/prod.yaml", want: "/srv/etc/venues/prod.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, confkit.ResolvePath(tt.base, tt.file))
		})
	}
}

func TestBaseDir(t *testing.T) {
	assert.Equal(t, "/etc/cryptodata", confkit.BaseDir("/etc/cryptodata/api.yaml"))
	assert.Equal(t, "etc", confkit.BaseDir("etc/api.yaml"))
}

type sample struct{ Name string }

func TestSectionHydrate(t *testing.T) {
	t.Run("empty file keeps defaults", func(t *testing.T) {
		var s confkit.Section[sample]
		err := s.Hydrate("/base", func(string) (*sample, error) {
			t.Fatal("loader must not run without a file")
			return nil, nil
		})
		require.NoError(t, err)
		assert.False(t, s.Loaded())
	})

	t.Run("loads relative file", func(t *testing.T) {
		s := confkit.Section[sample]{File: "venues.yaml"}
		err := s.Hydrate("/base", func(path string) (*sample, error) {
			assert.Equal(t, "/base/venues.yaml", path)
			return &sample{Name: "ok"}, nil
		})
		require.NoError(t, err)
		require.True(t, s.Loaded())
		assert.Equal(t, "ok", s.Value.Name)
		assert.Equal(t, "/base/venues.yaml", s.File)
	})

	t.Run("propagates loader error", func(t *testing.T) {
		s := confkit.Section[sample]{File: "venues.yaml"}
		boom := errors.New("boom")
		err := s.Hydrate("/base", func(string) (*sample, error) { return nil, boom })
		assert.ErrorIs(t, err, boom)
		assert.False(t, s.Loaded())
	})
}

func TestProjectRootHoldsGoMod(t *testing.T) {
	root, err := confkit.ProjectRoot()
	require.NoError(t, err)
	_, statErr := os.Stat(filepath.Join(root, "go.mod"))
	assert.NoError(t, statErr)
	_, statErr = os.Stat(filepath.Join(root, "etc", "venues.yaml"))
	assert.NoError(t, statErr)
}
