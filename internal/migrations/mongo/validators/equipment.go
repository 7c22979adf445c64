package validators

import "go.mongodb.org/mongo-driver/bson"

var EquipmentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"allow_simultaneous",
			"active",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"category": bson.M{
				"bsonType":  "string",
				"maxLength": 50,
			},

			"location": bson.M{
				"bsonType":  "string",
				"maxLength": 200,
			},

			"allow_simultaneous": bson.M{
				"bsonType": "bool",
			},

			"max_simultaneous": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  1000,
			},

			"active": bson.M{
				"bsonType": "bool",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
