package validators

import "go.mongodb.org/mongo-driver/bson"

var TableValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"table_number", "capacity", "status", "created_at"},
		"additionalProperties": true,

		"properties": bson.M{
			"table_number": bson.M{
				"bsonType": intType,
				"minimum":  1,
			},
			"capacity": bson.M{
				"bsonType": intType,
				"minimum":  1,
				"maximum":  20,
			},
			"location": bson.M{
				"bsonType":  "string",
				"maxLength": 50,
			},
			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"AVAILABLE", "OCCUPIED", "RESERVED"},
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
