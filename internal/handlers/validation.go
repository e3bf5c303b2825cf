package handlers

import (
	"github.com/go-playground/validator/v10"
)

// フィールド名.タグ → メッセージ
var fieldMessages = map[string]string{
	"FullName.required": "Full name is required",
	"FullName.min":      "Full name must be at least 2 characters",
	"FullName.max":      "Full name must be less than 100 characters",
	"Email.required":    "Email is required",
	"Email.email":       "Invalid email address",
	"Password.required": "Password is required",
	"Password.min":      "Password must be at least 6 characters",

	"Name.required":        "Project name is required",
	"Name.min":             "Project name must be at least 2 characters",
	"Name.max":             "Project name must be less than 100 characters",
	"Description.required": "Description is required",
	"Description.max":      "Description must be less than 500 characters",

	"Title.required": "Task title is required",
	"Title.min":      "Task title must be at least 2 characters",
	"Title.max":      "Task title must be less than 200 characters",
	"Status.oneof":   "Invalid status",
}

func validationMessages(verrs validator.ValidationErrors) []string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]; ok {
			msgs = append(msgs, msg)
			continue
		}
		msgs = append(msgs, fe.Field()+" is invalid")
	}
	return msgs
}
