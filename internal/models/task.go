package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// TaskStatus はタスクの状態です。状態間の遷移に制約はありません。
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// Task はプロジェクトに属するタスクです。所有者は親プロジェクト経由で決まります。
type Task struct {
	ID        string
	ProjectID string
	Title     string
	Status    TaskStatus
	DueDate   *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DueDate は JSON の dueDate フィールドで「未指定」「null」「値あり」を区別します。
// 空文字は null と同じ扱いです。
type DueDate struct {
	Set     bool
	Value   *time.Time
	Invalid bool
}

func (d *DueDate) UnmarshalJSON(b []byte) error {
	d.Set = true
	d.Value = nil
	d.Invalid = false
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		d.Invalid = true
		return nil
	}
	if s == "" {
		return nil
	}
	t, err := ParseDueDate(s)
	if err != nil {
		d.Invalid = true
		return nil
	}
	d.Value = &t
	return nil
}

type CreateTaskRequest struct {
	Title   string     `json:"title" binding:"required,min=2,max=200"`
	Status  TaskStatus `json:"status" binding:"omitempty,oneof=todo in_progress done"`
	DueDate DueDate    `json:"dueDate"`
}

// Validate はタグで表現できない検証を行い、エラーメッセージを返します。
func (r CreateTaskRequest) Validate() []string {
	if r.DueDate.Invalid {
		return []string{"Invalid due date"}
	}
	return nil
}

// UpdateTaskRequest は部分更新です。dueDate に null を指定すると期限を消します。
type UpdateTaskRequest struct {
	Title   *string     `json:"title" binding:"omitempty,min=2,max=200"`
	Status  *TaskStatus `json:"status" binding:"omitempty,oneof=todo in_progress done"`
	DueDate DueDate     `json:"dueDate"`
}

func (r UpdateTaskRequest) Validate() []string {
	if r.DueDate.Invalid {
		return []string{"Invalid due date"}
	}
	return nil
}

// TaskPatch はストレージに渡す更新内容です。DueDateSet が false なら期限は変更しません。
type TaskPatch struct {
	Title      *string
	Status     *TaskStatus
	DueDateSet bool
	DueDate    *time.Time
}

func (r UpdateTaskRequest) Patch() TaskPatch {
	return TaskPatch{
		Title:      r.Title,
		Status:     r.Status,
		DueDateSet: r.DueDate.Set,
		DueDate:    r.DueDate.Value,
	}
}

func (patch TaskPatch) Apply(t *Task, updatedAt time.Time) {
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.DueDateSet {
		if patch.DueDate == nil {
			t.DueDate = nil
		} else {
			d := *patch.DueDate
			t.DueDate = &d
		}
	}
	t.UpdatedAt = updatedAt
}

type TaskResponse struct {
	ID        string  `json:"id"`
	ProjectID string  `json:"projectId"`
	Title     string  `json:"title"`
	Status    string  `json:"status"`
	DueDate   *string `json:"dueDate,omitempty"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

func NewTaskResponse(t *Task) TaskResponse {
	res := TaskResponse{
		ID:        t.ID,
		ProjectID: t.ProjectID,
		Title:     t.Title,
		Status:    string(t.Status),
		CreatedAt: FormatTime(t.CreatedAt),
		UpdatedAt: FormatTime(t.UpdatedAt),
	}
	if t.DueDate != nil {
		s := FormatTime(*t.DueDate)
		res.DueDate = &s
	}
	return res
}

func NewTaskResponses(ts []*Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, NewTaskResponse(t))
	}
	return out
}
