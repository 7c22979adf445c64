package validators

import "go.mongodb.org/mongo-driver/bson"

var ReservationHistoryValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"reservation_id",
			"field",
			"changed_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"reservation_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"field": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"old_value": bson.M{
				"bsonType": "string",
			},

			"new_value": bson.M{
				"bsonType": "string",
			},

			"actor": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},

			"changed_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
