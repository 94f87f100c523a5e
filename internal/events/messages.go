// Package events publishes notifications about finished comparisons.
package events

import (
	"encoding/json"
	"time"

	"fjacquet/statement-compare/internal/models"

	"github.com/shopspring/decimal"
)

// ComparisonCompletedMessage announces a stored comparison. Consumers fetch
// the full result from history by ComparisonID.
type ComparisonCompletedMessage struct {
	ComparisonID   string          `json:"comparisonId"`
	Statement1     string          `json:"statement1"`
	Statement2     string          `json:"statement2"`
	SpendingChange decimal.Decimal `json:"spendingChange"`
	IncomeChange   decimal.Decimal `json:"incomeChange"`
	CategoryCount  int             `json:"categoryCount"`
	Timestamp      time.Time       `json:"timestamp"`
}

// NewComparisonCompletedMessage builds a message for a comparison.
func NewComparisonCompletedMessage(id, statement1, statement2 string, result *models.ComparisonResult, insights *models.ComparisonInsights) *ComparisonCompletedMessage {
	msg := &ComparisonCompletedMessage{
		ComparisonID: id,
		Statement1:   statement1,
		Statement2:   statement2,
		Timestamp:    time.Now().UTC(),
	}
	if result != nil {
		msg.CategoryCount = len(result.Comparison)
	}
	if insights != nil {
		msg.SpendingChange = insights.TotalSpendingChange
		msg.IncomeChange = insights.TotalIncomeChange
	}
	return msg
}

// ToJSON encodes the message.
func (m *ComparisonCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ComparisonCompletedMessageFromJSON decodes a message.
func ComparisonCompletedMessageFromJSON(data []byte) (*ComparisonCompletedMessage, error) {
	var msg ComparisonCompletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
