package validators

import "go.mongodb.org/mongo-driver/bson"

var ReservationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"reservation_number",
			"reservation_code",
			"equipment_id",
			"start_time",
			"end_time",
			"status",
			"requester_name",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"reservation_number": bson.M{
				"bsonType":  "string",
				"minLength": 11,
			},

			"reservation_code": bson.M{
				"bsonType": "string",
				"pattern":  "^[A-Z0-9]{8}$",
			},

			"equipment_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"time_slot_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"series_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"is_exception": bson.M{
				"bsonType": "bool",
			},

			"start_time": bson.M{
				"bsonType": "date",
			},

			"end_time": bson.M{
				"bsonType": "date",
			},

			"status": bson.M{
				"enum": []string{"confirmed", "in_use", "expired", "cancelled"},
			},

			"requester_name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"requester_contact": bson.M{
				"bsonType":  "string",
				"maxLength": 200,
			},

			"purpose": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
