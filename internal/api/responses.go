package api

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
	Code  string `json:"code,omitempty" example:"CONFLICT"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

type CountResponse struct {
	Count int64 `json:"count" example:"3"`
}

type BoolResponse struct {
	Value bool `json:"value" example:"true"`
}

type AmountResponse struct {
	AmountCents int64 `json:"amount_cents" example:"4999"`
}
