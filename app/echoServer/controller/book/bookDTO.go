package book

type BookReq struct {
	Title       string `json:"title" validate:"required"`
	Author      string `json:"author" validate:"required"`
	Category    string `json:"category" validate:"required"`
	PublishYear int    `json:"publish_year" validate:"required,gt=0"`
	Stock       int    `json:"stock" validate:"gte=0"`
	Shelf       string `json:"shelf" validate:"required"`
}

type SetStockReq struct {
	Stock int `json:"stock" validate:"gte=0"`
}
