package application

import (
	"jobtag/internal/domain/application"
)

type listInput struct {
	Status   []string `query:"status" doc:"Фильтр по статусам"`
	Archived string   `query:"archived" doc:"Архивные (true), активные (false) или все"`
	Search   string   `query:"search" doc:"Подстрока в названии компании или позиции"`
	From     string   `query:"from" doc:"Создана не раньше (RFC3339 или YYYY-MM-DD)"`
	To       string   `query:"to" doc:"Создана не позже (RFC3339 или YYYY-MM-DD)"`
}

type listOutput struct {
	Body listResponse
}

type listResponse struct {
	Applications []application.Application `json:"applications"`
	Count        int                       `json:"count"`
}

type createInput struct {
	Body application.CreateInput
}

type output struct {
	Body *application.Application
}

type idInput struct {
	ID string `path:"id" format:"uuid" doc:"ID заявки"`
}

type updateInput struct {
	ID   string `path:"id" format:"uuid" doc:"ID заявки"`
	Body application.UpdateInput
}

type statusInput struct {
	ID   string `path:"id" format:"uuid" doc:"ID заявки"`
	Body statusRequest
}

type statusRequest struct {
	Status application.Status `json:"status"`
	Note   string             `json:"note,omitempty" required:"false"`
}

type archiveInput struct {
	ID   string `path:"id" format:"uuid" doc:"ID заявки"`
	Body archiveRequest
}

type archiveRequest struct {
	Archived bool `json:"archived"`
}

type statsOutput struct {
	Body application.Stats
}
