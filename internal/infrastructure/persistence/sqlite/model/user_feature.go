package model

type UserFeature struct {
	UserID         uint64 `gorm:"column:user_id;primaryKey"`
	LastEventTS    string `gorm:"column:last_event_ts;type:text;not null"`
	EventCount     uint64 `gorm:"column:event_count;not null"`
	AddToCartCount uint64 `gorm:"column:add_to_cart_count;not null"`
	PurchaseCount  uint64 `gorm:"column:purchase_count;not null"`
}

func (UserFeature) TableName() string {
	return "user_features"
}
