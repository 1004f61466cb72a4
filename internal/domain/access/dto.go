package access

type UnlockRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

type UnlockResponse struct {
	ProjectID string `json:"project_id"`
	State     State  `json:"state"`
}

type LanguageRequest struct {
	Language string `json:"language" validate:"required,len=2,alpha"`
}
