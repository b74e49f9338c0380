package validators

import "go.mongodb.org/mongo-driver/bson"

var intType = []string{"int", "long"}

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"user_id",
			"table_id",
			"party_size",
			"booking_type",
			"status",
			"booking_time",
			"estimated_duration",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"user_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"table_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"party_size": bson.M{
				"bsonType": intType,
				"minimum":  1,
				"maximum":  20,
			},

			"booking_type": bson.M{
				"bsonType": "string",
				"enum":     []string{"RESERVATION", "WALKIN"},
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"PENDING",
					"CONFIRMED",
					"SEATED",
					"COMPLETED",
					"CANCELLED",
				},
			},

			"booking_time": bson.M{
				"bsonType": "date",
			},

			"estimated_duration": bson.M{
				"bsonType": intType,
				"minimum":  1,
			},

			"actual_start_time": bson.M{
				"bsonType": "date",
			},

			"actual_end_time": bson.M{
				"bsonType": "date",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
