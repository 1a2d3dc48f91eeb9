package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pranubaita/photoshare/src/engine"
	"github.com/pranubaita/photoshare/src/models"
	"github.com/stretchr/testify/require"
)

func TestCollections(t *testing.T) {
	require.Equal(t, "username", Users.PrimaryField())
	require.Equal(t, "url", Posts.PrimaryField())
	require.Equal(t, "id", Comments.PrimaryField())

	require.Equal(t, []string{"username", "email", "password_hash", "first_name", "last_name", "bio"}, Users.FieldNames())

	email, ok := Users.Property("email")
	require.True(t, ok)
	require.True(t, email.IsUnique())

	likes, ok := Posts.Property("likes")
	require.True(t, ok)
	require.True(t, likes.IsMultiple())

	auto := Comments.Autoincremented()
	require.Len(t, auto, 1)
	require.Equal(t, "id", auto[0].Name())

	c, ok := Lookup("posts")
	require.True(t, ok)
	require.Same(t, Posts, c)

	_, ok = Lookup("likes")
	require.False(t, ok)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	db, err := Open(dir, nil)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	for _, name := range []string{"users.json", "posts.json", "comments.json"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		require.Equal(t, "{}", string(data))
	}

	db, err = Open(dir, engine.DefaultOptions())
	require.NoError(t, err)
	defer db.Close()

	created, err := db.Create(Comments, models.Record{
		"body":       "lovely",
		"time_stamp": 1700000000000,
		"commenter":  "ada",
		"post":       "abc",
	})
	require.NoError(t, err)
	require.Equal(t, float64(1), created["id"])
}

func TestNewPostURL(t *testing.T) {
	a, b := NewPostURL(), NewPostURL()
	require.Regexp(t, `^[0-9a-f]{32}$`, a)
	require.NotEqual(t, a, b)
}

func TestTimestamp(t *testing.T) {
	require.Equal(t, float64(1700000000123), Timestamp(time.UnixMilli(1700000000123)))
}
