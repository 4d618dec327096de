package models

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
	Fetches   int64  `json:"fetches"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
