package engine

import (
	"testing"

	"github.com/pranubaita/photoshare/src/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	testUsers = models.MustCollection("users",
		models.MustProperty("username", models.StringType, models.PropertyOptions{Primary: true}),
		models.MustProperty("email", models.StringType, models.PropertyOptions{Unique: true}),
		models.MustProperty("bio", models.StringType, models.PropertyOptions{Optional: true}),
	)

	testComments = models.MustCollection("comments",
		models.MustProperty("id", models.NumberType, models.PropertyOptions{Primary: true, Autoincrement: true}),
		models.MustProperty("body", models.StringType, models.PropertyOptions{}),
		models.MustProperty("likes", models.StringType, models.PropertyOptions{Multiple: true}),
	)
)

func openTestDatabase(t *testing.T, opts *Options) (*Database, string) {
	t.Helper()

	dir := t.TempDir()
	db, err := Open(dir, []*models.Collection{testUsers, testComments}, opts)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})
	return db, dir
}

func ada() models.Record {
	return models.Record{"username": "ada", "email": "a@x.com", "bio": "analyst"}
}
