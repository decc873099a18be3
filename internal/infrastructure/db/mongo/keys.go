package mongo

import "go.mongodb.org/mongo-driver/bson"

// bsonKeys builds an ascending compound index key.
func bsonKeys(fields ...string) bson.D {
	keys := make(bson.D, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, bson.E{Key: f, Value: 1})
	}
	return keys
}
