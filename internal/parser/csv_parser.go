package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"club-recon/internal/domain"
	"club-recon/pkg/logger"
)

// StatementParser parses bank statement exports into raw records
type StatementParser interface {
	Parse(r io.Reader, batchSize int, callback func([]domain.RawRecord) error) error
}

// CSVStatementParser implements a streaming CSV parser.
//
// Required columns: occurred_at (or date), amount. Optional: bank_tx_id,
// direction, balance_after, narrative. Without a direction column the sign of
// amount decides it.
type CSVStatementParser struct {
	location *time.Location
}

func NewCSVStatementParser(loc *time.Location) *CSVStatementParser {
	if loc == nil {
		loc = time.UTC
	}
	return &CSVStatementParser{location: loc}
}

// Parse reads the CSV in streaming mode and hands records to callback in
// batches. Rows that cannot be parsed are logged and skipped.
func (p *CSVStatementParser) Parse(r io.Reader, batchSize int, callback func([]domain.RawRecord) error) error {
	if batchSize <= 0 {
		batchSize = 500
	}

	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to read CSV header")
		return fmt.Errorf("failed to read header: %w", err)
	}

	columnMap := mapColumns(header)
	if _, ok := columnMap["occurred_at"]; !ok {
		if i, ok := columnMap["date"]; ok {
			columnMap["occurred_at"] = i
		}
	}
	if !validateColumns(columnMap) {
		return fmt.Errorf("invalid CSV format: missing required columns (occurred_at, amount)")
	}

	batch := make([]domain.RawRecord, 0, batchSize)
	lineNumber := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		lineNumber++
		if err != nil {
			logger.GetLogger().WithError(err).WithField("line", lineNumber).Warn("Failed to read CSV row, skipping")
			continue
		}

		raw, err := p.parseRecord(record, columnMap, lineNumber)
		if err != nil {
			logger.GetLogger().WithError(err).WithField("line", lineNumber).Warn("Failed to parse record, skipping")
			continue
		}

		batch = append(batch, *raw)

		if len(batch) >= batchSize {
			if err := callback(batch); err != nil {
				return err
			}
			batch = make([]domain.RawRecord, 0, batchSize)
		}
	}

	if len(batch) > 0 {
		if err := callback(batch); err != nil {
			return err
		}
	}

	return nil
}

func (p *CSVStatementParser) parseRecord(record []string, columnMap map[string]int, lineNumber int) (*domain.RawRecord, error) {
	field := func(name string) string {
		i, ok := columnMap[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	amountStr := strings.ReplaceAll(field("amount"), ",", "")
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("invalid amount '%s' at line %d: %w", amountStr, lineNumber, err)
	}

	occurredAt, err := p.parseTime(field("occurred_at"))
	if err != nil {
		return nil, fmt.Errorf("invalid occurred_at at line %d: %w", lineNumber, err)
	}

	direction := domain.Direction(strings.ToUpper(field("direction")))
	switch direction {
	case "":
		direction = domain.Deposit
		if amount.IsNegative() {
			direction = domain.Withdraw
		}
	case "CREDIT", "IN":
		direction = domain.Deposit
	case "DEBIT", "OUT":
		direction = domain.Withdraw
	}

	raw := &domain.RawRecord{
		BankTxID:   field("bank_tx_id"),
		OccurredAt: occurredAt,
		Direction:  direction,
		Amount:     amount.Abs(),
		Narrative:  field("narrative"),
	}

	if s := strings.ReplaceAll(field("balance_after"), ",", ""); s != "" {
		balance, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("invalid balance_after '%s' at line %d: %w", s, lineNumber, err)
		}
		raw.BalanceAfter = &balance
	}

	return raw, nil
}

func mapColumns(header []string) map[string]int {
	columnMap := make(map[string]int)
	for i, col := range header {
		normalized := strings.ToLower(strings.TrimSpace(col))
		columnMap[normalized] = i
	}
	return columnMap
}

func validateColumns(columnMap map[string]int) bool {
	requiredColumns := []string{"occurred_at", "amount"}
	for _, col := range requiredColumns {
		if _, exists := columnMap[col]; !exists {
			return false
		}
	}
	return true
}

func (p *CSVStatementParser) parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}

	formats := []string{
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
		"2006/01/02 15:04:05",
		"2006/01/02",
		"2006.01.02 15:04:05",
		"2006.01.02",
	}
	for _, format := range formats {
		if t, err := time.ParseInLocation(format, s, p.location); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse time: %s", s)
}
