package models

import "time"

type Store struct {
	ID        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	OwnerID   int       `json:"owner_id" gorm:"not null;index"`
	Owner     User      `json:"-" gorm:"foreignKey:OwnerID;references:ID;constraint:OnDelete:CASCADE"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	ImageURL  *string   `json:"image_url,omitempty" gorm:"type:varchar(512)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Store) TableName() string {
	return "stores"
}
