package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func usersCollection(t *testing.T) *Collection {
	t.Helper()

	users, err := NewCollection("users",
		MustProperty("username", StringType, PropertyOptions{Primary: true}),
		MustProperty("email", StringType, PropertyOptions{Unique: true}),
		MustProperty("bio", StringType, PropertyOptions{Optional: true}),
		MustProperty("visits", NumberType, PropertyOptions{Autoincrement: true}),
	)
	require.NoError(t, err)
	return users
}

func TestNewProperty(t *testing.T) {
	tests := []struct {
		name      string
		fieldType FieldType
		opts      PropertyOptions
		wantErr   bool
	}{
		{"plain string", StringType, PropertyOptions{}, false},
		{"optional bool", BooleanType, PropertyOptions{Optional: true}, false},
		{"multiple string", StringType, PropertyOptions{Multiple: true}, false},
		{"autoincrement primary", NumberType, PropertyOptions{Primary: true, Autoincrement: true}, false},
		{"primary and optional", StringType, PropertyOptions{Primary: true, Optional: true}, true},
		{"multiple and unique", StringType, PropertyOptions{Multiple: true, Unique: true}, true},
		{"multiple and primary", StringType, PropertyOptions{Multiple: true, Primary: true}, true},
		{"unsupported type", FieldType("date"), PropertyOptions{}, true},
		{"autoincrement and multiple", NumberType, PropertyOptions{Autoincrement: true, Multiple: true}, true},
		{"autoincrement string", StringType, PropertyOptions{Autoincrement: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProperty("field", tt.fieldType, tt.opts)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidSchema)
				return
			}
			require.NoError(t, err)
		})
	}

	_, err := NewProperty("", StringType, PropertyOptions{})
	require.ErrorIs(t, err, ErrInvalidSchema)
}

func TestPropertyPrimaryImpliesUnique(t *testing.T) {
	p := MustProperty("id", NumberType, PropertyOptions{Primary: true})
	require.True(t, p.IsUnique())
	require.True(t, p.IsPrimary())
	require.True(t, p.IsRequired())

	auto := MustProperty("seq", NumberType, PropertyOptions{Autoincrement: true})
	require.False(t, auto.IsRequired())
}

func TestMustPropertyPanics(t *testing.T) {
	require.Panics(t, func() {
		MustProperty("tags", StringType, PropertyOptions{Multiple: true, Unique: true})
	})
}

func TestNewCollectionDerivedViews(t *testing.T) {
	users := usersCollection(t)

	require.Equal(t, "users", users.Name())
	require.Equal(t, "username", users.PrimaryField())
	require.Equal(t, []string{"username", "email", "bio", "visits"}, users.FieldNames())
	require.True(t, users.Has("email"))
	require.False(t, users.Has("password"))

	schema := users.Schema()
	require.Len(t, schema, 4)
	require.True(t, schema["email"].IsUnique())
	require.True(t, schema["bio"].IsOptional())

	auto := users.Autoincremented()
	require.Len(t, auto, 1)
	require.Equal(t, "visits", auto[0].Name())

	// the returned views are copies
	delete(schema, "email")
	require.True(t, users.Has("email"))
	props := users.Properties()
	props[0] = MustProperty("other", StringType, PropertyOptions{})
	require.Equal(t, "username", users.Properties()[0].Name())
}

func TestNewCollectionInvalid(t *testing.T) {
	id := MustProperty("id", NumberType, PropertyOptions{Primary: true})
	body := MustProperty("body", StringType, PropertyOptions{})

	tests := []struct {
		name       string
		collection string
		props      []Property
	}{
		{"no primary", "comments", []Property{body}},
		{"two primaries", "comments", []Property{id, MustProperty("url", StringType, PropertyOptions{Primary: true})}},
		{"duplicate fields", "comments", []Property{id, body, body}},
		{"empty name", "", []Property{id}},
		{"two words", "user posts", []Property{id}},
		{"punctuation", "posts!", []Property{id}},
		{"path", "../posts", []Property{id}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCollection(tt.collection, tt.props...)
			require.ErrorIs(t, err, ErrInvalidSchema)
			require.Nil(t, c)
		})
	}

	require.Panics(t, func() { MustCollection("nothing") })
}

func TestNormalizeValue(t *testing.T) {
	require.Equal(t, float64(3), NormalizeValue(3))
	require.Equal(t, float64(3), NormalizeValue(int64(3)))
	require.Equal(t, float64(7), NormalizeValue(uint8(7)))
	require.Equal(t, float64(1.5), NormalizeValue(float32(1.5)))
	require.Equal(t, "ada", NormalizeValue("ada"))
	require.Equal(t, true, NormalizeValue(true))
	require.Nil(t, NormalizeValue(nil))
	require.Equal(t, []interface{}{"a", "b"}, NormalizeValue([]string{"a", "b"}))
	require.Equal(t, []interface{}{float64(1), float64(2)}, NormalizeValue([]int{1, 2}))
	require.Equal(t,
		map[string]interface{}{"n": float64(1)},
		NormalizeValue(map[string]int{"n": 1}),
	)

	type label string
	require.Equal(t, "x", NormalizeValue(label("x")))
}

func TestNormalizeRecordDoesNotAlias(t *testing.T) {
	likes := []interface{}{"ada"}
	in := Record{"likes": likes, "time_stamp": 10}

	out := NormalizeRecord(in)
	require.Equal(t, Record{"likes": []interface{}{"ada"}, "time_stamp": float64(10)}, out)

	out["likes"].([]interface{})[0] = "bea"
	require.Equal(t, "ada", likes[0])
}

func TestKeyOf(t *testing.T) {
	key, err := KeyOf("ada")
	require.NoError(t, err)
	require.Equal(t, "ada", key)

	key, err = KeyOf(1)
	require.NoError(t, err)
	require.Equal(t, "1", key)

	key, err = KeyOf(2.5)
	require.NoError(t, err)
	require.Equal(t, "2.5", key)

	key, err = KeyOf(false)
	require.NoError(t, err)
	require.Equal(t, "false", key)

	_, err = KeyOf([]interface{}{"a"})
	require.Error(t, err)
	_, err = KeyOf(nil)
	require.Error(t, err)
}

func TestDocumentKeysAndRecords(t *testing.T) {
	doc := Document{
		"10":  Record{"id": float64(10)},
		"2":   Record{"id": float64(2)},
		"1":   Record{"id": float64(1)},
		"bea": Record{"id": "bea"},
		"ada": Record{"id": "ada"},
	}

	require.Equal(t, []string{"1", "2", "10", "ada", "bea"}, doc.Keys())
	records := doc.Records()
	require.Len(t, records, 5)
	require.Equal(t, float64(1), records[0]["id"])
	require.Equal(t, "bea", records[4]["id"])
}

func TestDocumentKeysOnlyTreatDecimalsAsNumbers(t *testing.T) {
	doc := Document{}
	for _, key := range []string{"nan", "inf", "infinity", "0x1p3", "1e3", "-1.5", "2", "+3", "NaN", "10"} {
		doc[key] = Record{}
	}

	require.Equal(t,
		[]string{"-1.5", "2", "10", "+3", "0x1p3", "1e3", "NaN", "inf", "infinity", "nan"},
		doc.Keys())
}

func TestCloneIsDeep(t *testing.T) {
	doc := Document{"p": Record{"likes": []interface{}{"ada"}}}
	clone := doc.Clone()
	clone["p"]["likes"] = append(clone["p"]["likes"].([]interface{}), "bea")
	clone["q"] = Record{}

	require.Len(t, doc, 1)
	require.Equal(t, []interface{}{"ada"}, doc["p"]["likes"])
}
