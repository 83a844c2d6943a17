package dto

type GetPurchasesResponseDTO struct {
	Number     string `json:"number" example:"12345678903"`
	Status     string `json:"status" example:"PROCESSED"`
	Points     int64  `json:"points,omitempty" example:"500"`
	UploadedAt string `json:"uploaded_at" example:"2020-12-09T16:09:57+03:00"`
}
