package dto

type CreateListingRequest struct {
	CategoryID  int64   `json:"category_id"`
	ListingType string  `json:"listing_type"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	PriceUnit   *string `json:"price_unit,omitempty"`
	Quantity    int     `json:"quantity"`
}

type UpdateListingRequest struct {
	CategoryID  *int64   `json:"category_id,omitempty"`
	ListingType *string  `json:"listing_type,omitempty"`
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	PriceUnit   *string  `json:"price_unit,omitempty"`
	Quantity    *int     `json:"quantity,omitempty"`
}

type ModerateListingRequest struct {
	Status string `json:"status"`
}

type ListingImageResponse struct {
	ID        int64  `json:"id"`
	ImageURL  string `json:"image_url"`
	IsPrimary bool   `json:"is_primary"`
}

type ListingResponse struct {
	ID          int64                  `json:"id"`
	SellerID    int64                  `json:"seller_id"`
	CategoryID  int64                  `json:"category_id"`
	ListingType string                 `json:"listing_type"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Price       float64                `json:"price"`
	PriceUnit   *string                `json:"price_unit,omitempty"`
	Quantity    int                    `json:"quantity"`
	Status      string                 `json:"status"`
	Images      []ListingImageResponse `json:"images"`
	CreatedAt   string                 `json:"created_at"`
}

type ListingPageResponse struct {
	Items    []ListingResponse `json:"items"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}
