package models

import "time"

// Project はユーザーが所有するプロジェクトです。所有者は UserID の1人だけです。
type Project struct {
	ID          string
	UserID      string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Description string `json:"description" binding:"required,max=500"`
}

// UpdateProjectRequest は部分更新です。nil のフィールドは変更しません。
type UpdateProjectRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=2,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// ProjectPatch はストレージに渡す更新内容です。
type ProjectPatch struct {
	Name        *string
	Description *string
}

func (r UpdateProjectRequest) Patch() ProjectPatch {
	return ProjectPatch{Name: r.Name, Description: r.Description}
}

// Apply は patch の指定フィールドを p に反映します。
func (patch ProjectPatch) Apply(p *Project, updatedAt time.Time) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	p.UpdatedAt = updatedAt
}

type ProjectResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func NewProjectResponse(p *Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		UserID:      p.UserID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   FormatTime(p.CreatedAt),
		UpdatedAt:   FormatTime(p.UpdatedAt),
	}
}

func NewProjectResponses(ps []*Project) []ProjectResponse {
	out := make([]ProjectResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, NewProjectResponse(p))
	}
	return out
}
