package health

type Input struct{}

type Output struct {
	Body Response
}

type Response struct {
	Status   string       `json:"status" example:"OK" doc:"Overall service status"`
	Database string       `json:"database" example:"OK" doc:"PostgreSQL connectivity"`
	Realtime RealtimeInfo `json:"realtime" doc:"Change feed state"`
}

type RealtimeInfo struct {
	Subscribers int `json:"subscribers" example:"3" doc:"Open websocket subscriptions"`
	Owners      int `json:"owners" example:"2" doc:"Owners with at least one subscription"`
}
