package database

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var migrationFileName = regexp.MustCompile(`^(\d{6})_([a-z0-9_]+)\.(up|down)\.sql$`)

type migrationPair struct {
	name     string
	up, down string
}

func readProjectMigrations(t *testing.T) map[int]*migrationPair {
	t.Helper()
	dir := projectMigrationsDir(t)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	pairs := map[int]*migrationPair{}
	for _, e := range entries {
		match := migrationFileName.FindStringSubmatch(e.Name())
		require.NotNil(t, match, "unexpected file %s in migrations", e.Name())

		version, _ := strconv.Atoi(match[1])
		p, ok := pairs[version]
		if !ok {
			p = &migrationPair{name: match[2]}
			pairs[version] = p
		}
		assert.Equal(t, p.name, match[2], "version %d has mismatched names", version)

		body, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		if match[3] == "up" {
			p.up = string(body)
		} else {
			p.down = string(body)
		}
	}
	return pairs
}

func TestMigrations_EveryVersionHasUpAndDown(t *testing.T) {
	pairs := readProjectMigrations(t)

	require.Len(t, pairs, 4)
	for version := 1; version <= 4; version++ {
		p, ok := pairs[version]
		require.True(t, ok, "missing version %d", version)
		assert.NotEmpty(t, strings.TrimSpace(p.up), "version %d up is empty", version)
		assert.Contains(t, p.down, "DROP TABLE IF EXISTS", "version %d down does not drop its table", version)
	}
}

// The services translate Postgres errors by constraint name, so these names
// must exist in the schema exactly as written.
func TestMigrations_DeclareConstraintsServicesMatchOn(t *testing.T) {
	var schema strings.Builder
	for _, p := range readProjectMigrations(t) {
		schema.WriteString(p.up)
	}
	sql := schema.String()

	for _, name := range []string{
		"friendships_pair_key",
		"users_username_key",
		"users_email_lower_key",
		"movies_imdb_id_key",
		"reel_progress_user_id_fkey",
		"reel_progress_movie_id_fkey",
	} {
		assert.Regexp(t, `(CONSTRAINT|INDEX IF NOT EXISTS) `+name+`\b`, sql, "constraint %s", name)
	}
}

func TestMigrations_FriendshipPairInvariants(t *testing.T) {
	friendships := readProjectMigrations(t)[4].up

	assert.Contains(t, friendships, "UNIQUE (low_id, high_id)")
	assert.Contains(t, friendships, "CHECK (low_id < high_id)")
	assert.Contains(t, friendships, "CHECK (requester_id = low_id OR requester_id = high_id)")
	assert.Equal(t, 2, strings.Count(friendships, "REFERENCES users(id) ON DELETE CASCADE"))
}
