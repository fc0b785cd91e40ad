package dto

// TransferRequest movimiento de cantidad entre locales.
type TransferRequest struct {
	SourceLocation      string `json:"source_location" validate:"required"`
	DestinationLocation string `json:"destination_location" validate:"required"`
	ProductID           string `json:"product_id" validate:"required"`
	Quantity            int64  `json:"quantity" validate:"gt=0"`
}

// TransferResponse estado final de ambos lados.
type TransferResponse struct {
	Source        *ProductResponse `json:"source"`
	SourceDeleted bool             `json:"source_deleted"`
	Destination   *ProductResponse `json:"destination"`
	Merged        bool             `json:"merged"`
	LogID         string           `json:"log_id,omitempty"`
	LogWarning    string           `json:"log_warning,omitempty"`
}
