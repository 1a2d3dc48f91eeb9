// Package catalog defines the collections of the photo sharing application.
package catalog

import (
	"strings"
	"time"

	"github.com/pranubaita/photoshare/src/engine"
	"github.com/pranubaita/photoshare/src/helpers"
	"github.com/pranubaita/photoshare/src/models"
)

// Users are identified by their username.
var Users = models.MustCollection("users",
	models.MustProperty("username", models.StringType, models.PropertyOptions{Primary: true}),
	models.MustProperty("email", models.StringType, models.PropertyOptions{Unique: true}),
	models.MustProperty("password_hash", models.StringType, models.PropertyOptions{}),
	models.MustProperty("first_name", models.StringType, models.PropertyOptions{}),
	models.MustProperty("last_name", models.StringType, models.PropertyOptions{}),
	models.MustProperty("bio", models.StringType, models.PropertyOptions{Optional: true}),
)

// Posts are identified by the file name of the uploaded photo. time_stamp
// is in milliseconds since the epoch and likes lists usernames.
var Posts = models.MustCollection("posts",
	models.MustProperty("url", models.StringType, models.PropertyOptions{Primary: true}),
	models.MustProperty("caption", models.StringType, models.PropertyOptions{Optional: true}),
	models.MustProperty("time_stamp", models.NumberType, models.PropertyOptions{}),
	models.MustProperty("user", models.StringType, models.PropertyOptions{}),
	models.MustProperty("likes", models.StringType, models.PropertyOptions{Multiple: true}),
)

// Comments get their numeric id from the store.
var Comments = models.MustCollection("comments",
	models.MustProperty("id", models.NumberType, models.PropertyOptions{Primary: true, Autoincrement: true}),
	models.MustProperty("body", models.StringType, models.PropertyOptions{}),
	models.MustProperty("time_stamp", models.NumberType, models.PropertyOptions{}),
	models.MustProperty("commenter", models.StringType, models.PropertyOptions{}),
	models.MustProperty("post", models.StringType, models.PropertyOptions{}),
)

// Collections returns every collection of the application.
func Collections() []*models.Collection {
	return []*models.Collection{Users, Posts, Comments}
}

// Lookup finds an application collection by name.
func Lookup(name string) (*models.Collection, bool) {
	for _, c := range Collections() {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// Open opens a store over dir with every application collection bootstrapped.
func Open(dir string, opts *engine.Options) (*engine.Database, error) {
	return engine.Open(dir, Collections(), opts)
}

// NewPostURL returns a fresh name for an uploaded photo, used as the url of
// its post: 32 lowercase hex characters.
func NewPostURL() string {
	return strings.ReplaceAll(helpers.GenerateUUID(), "-", "")
}

// Timestamp converts t to the millisecond timestamps stored in time_stamp fields.
func Timestamp(t time.Time) float64 {
	return float64(t.UnixMilli())
}
