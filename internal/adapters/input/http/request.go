package http

type (
	// CheckWhatsAppRequest struct - HTTP request DTO
	CheckWhatsAppRequest struct {
		PhoneNumber string `json:"phoneNumber" validate:"required,phone" form:"phoneNumber"`
	}
)
