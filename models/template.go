package models

import "time"

// Template is a design template customers start from. Stored in DynamoDB.
type Template struct {
	ID          string    `json:"id" dynamodbav:"template_id"`
	Name        string    `json:"name" dynamodbav:"name"`
	Category    string    `json:"category" dynamodbav:"category"`
	Description string    `json:"description,omitempty" dynamodbav:"description,omitempty"`
	Image       Image     `json:"image" dynamodbav:"image"`
	IsActive    bool      `json:"isActive" dynamodbav:"is_active"`
	CreatedAt   time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" dynamodbav:"updated_at"`
}
