package models

type Location struct {
	BaseUUIDModel
	Name     string `gorm:"type:text;not null;uniqueIndex" json:"name"`
	City     string `gorm:"type:text"                      json:"city"`
	IsActive bool   `gorm:"type:bool;default:true"         json:"isActive"`
}

type Client struct {
	BaseUUIDModel
	Name     string `gorm:"type:text;not null;uniqueIndex" json:"name"`
	IsActive bool   `gorm:"type:bool;default:true"         json:"isActive"`
}
