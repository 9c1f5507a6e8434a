package dto

// ProductCreateDTO is a producer's new listing
type ProductCreateDTO struct {
	UserID      uint   `json:"userId"`
	Title       string `json:"title"`
	Price       int    `json:"price"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Available   bool   `json:"available"`
	Rank        int    `json:"rank"`
}

// ProductUpdateDTO edits a listing. Availability is always written; the other fields
// only when set.
type ProductUpdateDTO struct {
	ID          uint   `json:"id"`
	UserID      uint   `json:"userId"`
	Available   bool   `json:"available"`
	Title       string `json:"title"`
	Price       *int   `json:"price"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Rank        *int   `json:"rank"`
}

// ProductDTO is the read projection of a product
type ProductDTO struct {
	ProductID   uint   `json:"productId"`
	UserID      uint   `json:"userId"`
	Title       string `json:"title"`
	Price       int    `json:"price"`
	Description string `json:"description"`
	Country     string `json:"country"`
	Location    string `json:"location"`
	Available   bool   `json:"available"`
	Rank        int    `json:"rank"`
	Thumbnail   string `json:"thumbnail"`
}

// ProductListDTO is one page of available products and the total count
type ProductListDTO struct {
	Count int64        `json:"count"`
	List  []ProductDTO `json:"list"`
}
