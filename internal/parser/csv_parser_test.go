package parser_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"club-recon/internal/domain"
	"club-recon/internal/parser"
)

func parseAll(t *testing.T, content string) ([]domain.RawRecord, error) {
	t.Helper()

	p := parser.NewCSVStatementParser(time.UTC)
	var records []domain.RawRecord
	err := p.Parse(strings.NewReader(content), 2, func(batch []domain.RawRecord) error {
		records = append(records, batch...)
		return nil
	})
	return records, err
}

func TestCSVStatementParser_Parse(t *testing.T) {
	content := `bank_tx_id,occurred_at,direction,amount,balance_after,narrative
B001,2024-01-05T10:00:00Z,DEPOSIT,10000,110000,KIM MEMBERSHIP
B002,2024-01-06 09:30:00,WITHDRAW,"2,500.50",107499.50,HALL RENT
B003,2024-01-07,CREDIT,300,,LEE
`

	records, err := parseAll(t, content)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "B001", records[0].BankTxID)
	assert.Equal(t, domain.Deposit, records[0].Direction)
	assert.True(t, records[0].Amount.Equal(decimal.NewFromInt(10000)))
	require.NotNil(t, records[0].BalanceAfter)
	assert.Equal(t, "KIM MEMBERSHIP", records[0].Narrative)

	assert.Equal(t, domain.Withdraw, records[1].Direction)
	assert.True(t, records[1].Amount.Equal(decimal.RequireFromString("2500.50")))

	assert.Equal(t, domain.Deposit, records[2].Direction)
	assert.Nil(t, records[2].BalanceAfter)
}

func TestCSVStatementParser_SignedAmountWithoutDirection(t *testing.T) {
	content := `date,amount,narrative
2024-01-05,-700,FEE
2024-01-05,700,REFUND
`

	records, err := parseAll(t, content)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, domain.Withdraw, records[0].Direction)
	assert.True(t, records[0].Amount.Equal(decimal.NewFromInt(700)))
	assert.Equal(t, domain.Deposit, records[1].Direction)
}

func TestCSVStatementParser_InvalidFormat(t *testing.T) {
	_, err := parseAll(t, "id,value\n1,100\n")
	assert.Error(t, err)
}

func TestCSVStatementParser_SkipsInvalidRows(t *testing.T) {
	content := `occurred_at,amount
2024-01-05,100
2024-01-06,invalid
not-a-date,300
2024-01-08,400
`

	records, err := parseAll(t, content)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
