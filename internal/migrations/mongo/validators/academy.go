package validators

import "go.mongodb.org/mongo-driver/bson"

var AcademyValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"email",
			"address",
			"city",
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

			"email": bson.M{
				"bsonType": "string",
				"pattern":  `^[^@\s]+@[^@\s]+\.[^@\s]+$`,
			},

			"phone": bson.M{
				"bsonType": "string",
			},

			"address": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 200,
			},

			"city": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 50,
			},

			"sports": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{
						"sport_name",
						"number_of_courts",
						"start_time",
						"end_time",
					},
					"properties": bson.M{
						"sport_name": bson.M{
							"bsonType":  "string",
							"minLength": 2,
							"maxLength": 50,
						},
						"number_of_courts": bson.M{
							"bsonType": "int",
							"minimum":  1,
							"maximum":  100,
						},
						"start_time": bson.M{
							"bsonType": "string",
							"pattern":  `^\d{2}:\d{2}$`,
						},
						"end_time": bson.M{
							"bsonType": "string",
							"pattern":  `^\d{2}:\d{2}$`,
						},
						"pricing": bson.M{
							"bsonType": "array",
							"items": bson.M{
								"bsonType": "object",
								"required": []string{"court_number"},
								"properties": bson.M{
									"court_number": bson.M{
										"bsonType": "int",
										"minimum":  1,
									},
									"prices": bson.M{
										"bsonType": "array",
										"items": bson.M{
											"bsonType": "object",
											"required": []string{"time", "price"},
											"properties": bson.M{
												"time": bson.M{
													"bsonType": "string",
													"pattern":  `^\d{2}:\d{2}$`,
												},
												"price": bson.M{
													"bsonType": []string{"double", "int", "long", "decimal"},
													"minimum":  0,
												},
											},
										},
									},
								},
							},
						},
					},
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
