package postgres

import (
	"context"
	"fmt"
	"time"

	"dashsync/pkg/tradeapi"

	"gorm.io/gorm/clause"
)

// timestamp layouts seen from the upstream API
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999", // ISO without zone
	"2006-01-02T15:04:05",
}

func parseUpstreamTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// ArchiveMetrics inserts every point of an accepted metrics snapshot.
// Points already archived from a previous poll are skipped via the
// unique CreatedAt index; replays are expected, not errors.
func (p *PostgresClient) ArchiveMetrics(ctx context.Context, points []tradeapi.MetricPoint) error {
	for _, point := range points {
		record, err := ToMetricPointRecord(point)
		if err != nil {
			return fmt.Errorf("convert metric point: %w", err)
		}

		tx := p.DB.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "created_at"}},
			DoNothing: true,
		}).Create(record)
		if tx.Error != nil {
			return fmt.Errorf("insert metric point: %w", tx.Error)
		}
	}
	return nil
}

// ArchiveTrades inserts accepted trades, keyed by the upstream trade id.
func (p *PostgresClient) ArchiveTrades(ctx context.Context, trades []tradeapi.TradeRecord) error {
	for _, trade := range trades {
		record, err := ToTradeRecord(trade)
		if err != nil {
			return fmt.Errorf("convert trade %s: %w", trade.ID, err)
		}

		tx := p.DB.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "trade_id"}},
			DoNothing: true,
		}).Create(record)
		if tx.Error != nil {
			return fmt.Errorf("insert trade %s: %w", trade.ID, tx.Error)
		}
	}
	return nil
}

// RecentMetricPoints returns the newest archived points, oldest first.
func (p *PostgresClient) RecentMetricPoints(ctx context.Context, limit int) ([]MetricPointRecord, error) {
	var records []MetricPointRecord
	err := p.DB.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	// reverse into chronological order
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// TradesBySymbol returns archived trades for one symbol, newest first.
func (p *PostgresClient) TradesBySymbol(ctx context.Context, symbol string) ([]TradeRecord, error) {
	var records []TradeRecord
	err := p.DB.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteMetricsBefore prunes points older than the cutoff.
func (p *PostgresClient) DeleteMetricsBefore(ctx context.Context, before time.Time) error {
	return p.DB.WithContext(ctx).
		Where("created_at < ?", before).
		Delete(&MetricPointRecord{}).Error
}

// ToMetricPointRecord converts an upstream metric point for DB insertion.
func ToMetricPointRecord(point tradeapi.MetricPoint) (*MetricPointRecord, error) {
	createdAt, err := parseUpstreamTime(point.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &MetricPointRecord{
		TotalCashValue:     point.TotalCashValue,
		CurrentTotalReturn: point.CurrentTotalReturn,
		CreatedAt:          createdAt,
	}, nil
}

// ToTradeRecord converts an upstream trade for DB insertion.
func ToTradeRecord(trade tradeapi.TradeRecord) (*TradeRecord, error) {
	createdAt, err := parseUpstreamTime(trade.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &TradeRecord{
		TradeID:    trade.ID,
		Symbol:     trade.Symbol,
		Operation:  trade.Operation,
		Leverage:   trade.Leverage,
		Amount:     trade.Amount,
		Price:      trade.Price,
		StopLoss:   trade.StopLoss,
		TakeProfit: trade.TakeProfit,
		ChatID:     trade.ChatID,
		ChatModel:  trade.ChatModel,
		CreatedAt:  createdAt,
	}, nil
}
