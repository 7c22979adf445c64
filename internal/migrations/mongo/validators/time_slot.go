package validators

import "go.mongodb.org/mongo-driver/bson"

var TimeSlotValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"equipment_id",
			"start_time",
			"end_time",
			"current_count",
			"max_simultaneous",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"equipment_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"start_time": bson.M{
				"bsonType": "date",
			},

			"end_time": bson.M{
				"bsonType": "date",
			},

			"current_count": bson.M{
				"bsonType": "int",
				"minimum":  0,
			},

			"max_simultaneous": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  1000,
			},
		},
	},
}
