package domain

import "time"

// SampleQuizzes is the built-in collection used when persistent storage is
// empty or unreadable. IDs are fixed so reseeding stays idempotent.
func SampleQuizzes() []Quiz {
	created := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
	return []Quiz{
		{
			ID:              "sample-arithmetic",
			Title:           "Quick Arithmetic",
			Description:     "Three easy sums to try the player out.",
			TimePerQuestion: 10,
			Questions: []Question{
				{
					ID:          "sample-arithmetic-q1",
					Text:        "What is 2 + 2?",
					Choices:     []string{"3", "4", "5"},
					AnswerIndex: 1,
				},
				{
					ID:          "sample-arithmetic-q2",
					Text:        "What is 9 x 3?",
					Choices:     []string{"27", "21", "39"},
					AnswerIndex: 0,
				},
				{
					ID:          "sample-arithmetic-q3",
					Text:        "What is 100 / 4?",
					Choices:     []string{"20", "40", "25"},
					AnswerIndex: 2,
				},
			},
			CreatedAt: created,
			UpdatedAt: created,
		},
		{
			ID:              "sample-capitals",
			Title:           "World Capitals",
			Description:     "",
			TimePerQuestion: 15,
			Questions: []Question{
				{
					ID:          "sample-capitals-q1",
					Text:        "What is the capital of Japan?",
					Choices:     []string{"Kyoto", "Osaka", "Tokyo"},
					AnswerIndex: 2,
				},
				{
					ID:          "sample-capitals-q2",
					Text:        "What is the capital of Australia?",
					Choices:     []string{"Canberra", "Sydney", "Melbourne"},
					AnswerIndex: 0,
				},
			},
			CreatedAt: created.Add(time.Minute),
			UpdatedAt: created.Add(time.Minute),
		},
	}
}
