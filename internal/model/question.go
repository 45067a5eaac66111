package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	QuestionTypeSingleChoice = "single_choice"
	QuestionTypeText         = "text"
)

type Question struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	Prompt string `json:"prompt" gorm:"type:text;not null"`
	Type   string `json:"type" gorm:"not null"` // "single_choice", "text"

	// For type="single_choice"
	OptionA       *string `json:"option_a,omitempty"`
	OptionB       *string `json:"option_b,omitempty"`
	OptionC       *string `json:"option_c,omitempty"`
	OptionD       *string `json:"option_d,omitempty"`
	CorrectOption *string `json:"-"` // "A".."D", never serialized to the test player

	// For type="text"
	CorrectText *string `json:"-" gorm:"type:text"`

	Explanation *string        `json:"explanation,omitempty" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
