package dto

import "time"

type CaptureLeadRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Email       string `json:"email" validate:"required,email"`
	Company     string `json:"company" validate:"omitempty,max=255"`
	ProjectIdea string `json:"project_idea" validate:"omitempty,max=2000"`
}

type LeadResponse struct {
	Id          string    `json:"id"`
	SessionId   string    `json:"session_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Company     string    `json:"company"`
	ProjectIdea string    `json:"project_idea"`
	CreatedAt   time.Time `json:"created_at"`
}
