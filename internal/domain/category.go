package domain

import "time"

// MainCategory is the top of the hierarchy and maps 1:1 onto an owning team.
type MainCategory struct {
	ID        string
	Name      string
	TeamID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SubCategory is a skill domain under a main category.
type SubCategory struct {
	ID             string
	MainCategoryID string
	Name           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CategoryItem is the concrete label incidents are filed under. Every item
// has exactly one sub-category, which has exactly one main category.
type CategoryItem struct {
	ID            string
	SubCategoryID string
	Name          string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CategoryPath is the resolved triple for an incident's category label.
type CategoryPath struct {
	ItemName    string
	SubCategory string
	TeamID      string
	TeamName    string
}
