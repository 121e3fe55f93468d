package model

// OffsetWatermark records the highest source offset per partition whose
// effects are durably committed. A redelivered offset at or below the
// watermark is skipped, which keeps aggregation effectively-once.
type OffsetWatermark struct {
	Partition int    `gorm:"column:partition_id;primaryKey;autoIncrement:false"`
	Offset    int64  `gorm:"column:committed_offset;not null"`
	UpdatedAt string `gorm:"column:updated_at;type:text;not null"`
}

func (OffsetWatermark) TableName() string {
	return "offset_watermarks"
}
