package engine

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pranubaita/photoshare/src/helpers"
	"github.com/pranubaita/photoshare/src/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Codec turns a collection Document into bytes on disk and back.
// Decode must return normalized records so that a Document survives a
// Encode/Decode round trip unchanged.
type Codec interface {
	Name() string
	Extension() string
	Encode(doc models.Document) ([]byte, error)
	Decode(data []byte) (models.Document, error)
}

// JSONIndent is the indentation of JSON collection files.
const JSONIndent = "    "

// JSONCodec stores documents as indented, human diffable JSON.
type JSONCodec struct{}

func (JSONCodec) Name() string      { return "json" }
func (JSONCodec) Extension() string { return ".json" }

func (JSONCodec) Encode(doc models.Document) ([]byte, error) {
	if doc == nil {
		doc = models.Document{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", JSONIndent)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (JSONCodec) Decode(data []byte) (models.Document, error) {
	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return normalizeDocument(doc)
}

// BSONCodec stores documents as a single binary BSON document.
type BSONCodec struct{}

func (BSONCodec) Name() string      { return "bson" }
func (BSONCodec) Extension() string { return ".bson" }

func (BSONCodec) Encode(doc models.Document) ([]byte, error) {
	m := make(map[string]interface{}, len(doc))
	for key, record := range doc {
		m[key] = map[string]interface{}(record)
	}
	return helpers.EncodeBSON(m)
}

func (BSONCodec) Decode(data []byte) (models.Document, error) {
	decoded, err := helpers.DecodeBSON(data)
	if err != nil {
		return nil, err
	}

	raw, ok := decoded.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("decoded data is %T, not a document", decoded)
	}

	doc := make(models.Document, len(raw))
	for key, value := range raw {
		record, ok := fromBSON(value).(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("record %s is %T, not a document", key, value)
		}
		doc[key] = models.Record(record)
	}
	return normalizeDocument(doc)
}

// fromBSON maps the driver's primitive containers onto plain Go maps and slices.
func fromBSON(value interface{}) interface{} {
	switch v := value.(type) {
	case primitive.D:
		m := make(map[string]interface{}, len(v))
		for _, e := range v {
			m[e.Key] = fromBSON(e.Value)
		}
		return m
	case primitive.M:
		return fromBSON(map[string]interface{}(v))
	case map[string]interface{}:
		m := make(map[string]interface{}, len(v))
		for k, item := range v {
			m[k] = fromBSON(item)
		}
		return m
	case primitive.A:
		return fromBSON([]interface{}(v))
	case []interface{}:
		items := make([]interface{}, len(v))
		for i, item := range v {
			items[i] = fromBSON(item)
		}
		return items
	}
	return value
}

func normalizeDocument(doc models.Document) (models.Document, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is empty or null")
	}
	for key, record := range doc {
		if record == nil {
			return nil, fmt.Errorf("record %s is null", key)
		}
		doc[key] = models.NormalizeRecord(record)
	}
	return doc, nil
}

// CodecByName resolves a codec from its configuration name.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", JSONCodec{}.Name():
		return JSONCodec{}, nil
	case BSONCodec{}.Name():
		return BSONCodec{}, nil
	}
	return nil, fmt.Errorf("unknown codec %q", name)
}
