package model

type Event struct {
	EventID    uint64  `gorm:"column:event_id;primaryKey;autoIncrement"`
	UserID     uint64  `gorm:"column:user_id;not null;index"`
	ItemID     *int64  `gorm:"column:item_id"`
	EventType  string  `gorm:"column:event_type;type:text;not null"`
	EventValue float64 `gorm:"column:event_value;not null"`
	EventTS    string  `gorm:"column:event_ts;type:text;not null"`
}

func (Event) TableName() string {
	return "events"
}
