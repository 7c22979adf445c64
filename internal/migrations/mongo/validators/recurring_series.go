package validators

import "go.mongodb.org/mongo-driver/bson"

var RecurringSeriesValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"reservation_code",
			"equipment_id",
			"pattern",
			"start_date",
			"end_date",
			"start_time_of_day",
			"end_time_of_day",
			"status",
			"requester_name",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
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

			"pattern": bson.M{
				"enum": []string{"daily", "weekly", "monthly"},
			},

			"weekdays": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "int",
					"minimum":  0,
					"maximum":  6,
				},
			},

			"days_of_month": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "int",
					"minimum":  1,
					"maximum":  31,
				},
			},

			"start_date": bson.M{
				"bsonType": "date",
			},

			"end_date": bson.M{
				"bsonType": "date",
			},

			"start_time_of_day": bson.M{
				"bsonType": "string",
				"pattern":  "^([01][0-9]|2[0-3]):[0-5][0-9]$",
			},

			"end_time_of_day": bson.M{
				"bsonType": "string",
				"pattern":  "^([01][0-9]|2[0-3]):[0-5][0-9]$",
			},

			"status": bson.M{
				"enum": []string{"active", "cancelled"},
			},

			"requester_name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"planned_count": bson.M{
				"bsonType": "int",
				"minimum":  0,
			},

			"created_count": bson.M{
				"bsonType": "int",
				"minimum":  0,
			},

			"skipped_count": bson.M{
				"bsonType": "int",
				"minimum":  0,
			},

			"skipped_dates": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "string",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
