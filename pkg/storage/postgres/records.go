package postgres

import "time"

// MetricPointRecord archives one accepted account-value observation.
// The upstream replays the full series on every poll, so CreatedAt is
// the natural dedup key.
type MetricPointRecord struct {
	ID uint `gorm:"primaryKey"`

	TotalCashValue     float64   `gorm:"type:numeric;not null"`
	CurrentTotalReturn float64   `gorm:"type:numeric;not null"`
	CreatedAt          time.Time `gorm:"not null;index:idx_metric_created_at,unique"`

	RecordedAt time.Time `gorm:"autoCreateTime"`
}

// TableName overrides the default table name for GORM.
func (MetricPointRecord) TableName() string {
	return "metric_point_record"
}

// TradeRecord archives one completed trade. Optional numeric columns are
// null when the originating decision did not specify them.
type TradeRecord struct {
	ID uint `gorm:"primaryKey"`

	TradeID   string `gorm:"type:text;not null;index:idx_trade_id,unique"`
	Symbol    string `gorm:"type:text;not null;index:idx_trade_symbol"`
	Operation string `gorm:"type:text;not null"`

	Leverage   *float64 `gorm:"type:numeric"`
	Amount     *float64 `gorm:"type:numeric"`
	Price      *float64 `gorm:"type:numeric"`
	StopLoss   *float64 `gorm:"type:numeric"`
	TakeProfit *float64 `gorm:"type:numeric"`

	ChatID    string  `gorm:"type:text;not null"`
	ChatModel *string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;index:idx_trade_created_at"`

	RecordedAt time.Time `gorm:"autoCreateTime"`
}

// TableName overrides the default table name for GORM.
func (TradeRecord) TableName() string {
	return "trade_record"
}
