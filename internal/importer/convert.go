package importer

import (
	"time"

	"cloud.google.com/go/firestore"
	"go.mongodb.org/mongo-driver/bson"
)

// Document is one legacy document as read from the source.
type Document struct {
	ID   string
	Data map[string]interface{}
}

// ToBSON keys the document by its legacy id and rewrites values Mongo
// cannot store as they are. References become their document path and
// times are normalised to UTC.
func (d Document) ToBSON() bson.M {
	out := make(bson.M, len(d.Data)+1)
	for k, v := range d.Data {
		out[k] = convertValue(v)
	}
	out["_id"] = d.ID
	return out
}

func convertValue(v interface{}) interface{} {
	switch val := v.(type) {
	case *firestore.DocumentRef:
		if val == nil {
			return nil
		}
		if ref, err := ParseRefPath(val.Path); err == nil {
			return ref.DocumentPath
		}
		return val.ID
	case time.Time:
		return val.UTC()
	case map[string]interface{}:
		out := make(bson.M, len(val))
		for k, inner := range val {
			out[k] = convertValue(inner)
		}
		return out
	case []interface{}:
		out := make(bson.A, len(val))
		for i, inner := range val {
			out[i] = convertValue(inner)
		}
		return out
	}
	return v
}
