package dto

// TeamRequest payload.
type TeamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// TeamResponse output.
type TeamResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

// MainCategoryRequest payload.
type MainCategoryRequest struct {
	Name   string `json:"name"`
	TeamID string `json:"team_id"`
}

// SubCategoryRequest payload.
type SubCategoryRequest struct {
	MainCategoryID string `json:"main_category_id"`
	Name           string `json:"name"`
}

// CategoryItemRequest payload.
type CategoryItemRequest struct {
	SubCategoryID string `json:"sub_category_id"`
	Name          string `json:"name"`
}

// MainCategoryResponse output.
type MainCategoryResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	TeamID string `json:"team_id"`
}

// SubCategoryResponse output.
type SubCategoryResponse struct {
	ID             string `json:"id"`
	MainCategoryID string `json:"main_category_id"`
	Name           string `json:"name"`
}

// CategoryItemResponse output.
type CategoryItemResponse struct {
	ID            string `json:"id"`
	SubCategoryID string `json:"sub_category_id"`
	Name          string `json:"name"`
}

// LocationRequest payload.
type LocationRequest struct {
	Name     string `json:"name"`
	Building string `json:"building"`
	Floor    string `json:"floor"`
}

// LocationResponse output.
type LocationResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Building string `json:"building"`
	Floor    string `json:"floor"`
	IsActive bool   `json:"is_active"`
}
