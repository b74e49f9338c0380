package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingHistoryValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"booking_id",
			"party_size",
			"actual_duration",
			"day_of_week",
			"hour_of_day",
			"date",
			"booking_type",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"booking_id": bson.M{
				"bsonType": "string",
			},
			"party_size": bson.M{
				"bsonType": intType,
				"minimum":  1,
			},
			"actual_duration": bson.M{
				"bsonType": intType,
				"minimum":  0,
			},
			"table_capacity": bson.M{
				"bsonType": intType,
				"minimum":  0,
			},
			"day_of_week": bson.M{
				"bsonType": intType,
				"minimum":  0,
				"maximum":  6,
			},
			"hour_of_day": bson.M{
				"bsonType": intType,
				"minimum":  0,
				"maximum":  23,
			},
			"date": bson.M{
				"bsonType": "date",
			},
			"booking_type": bson.M{
				"bsonType": "string",
				"enum":     []string{"RESERVATION", "WALKIN"},
			},
		},
	},
}
