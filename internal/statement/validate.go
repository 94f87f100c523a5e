package statement

import (
	"fmt"

	"fjacquet/statement-compare/internal/models"

	"github.com/shopspring/decimal"
)

// totalsTolerance is the accepted drift between stored and recomputed totals.
var totalsTolerance = decimal.New(1, -2)

// ValidationResult is the outcome of ValidateParsedStatement.
type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// ValidateParsedStatement checks the internal consistency of a converted
// statement. It never fails; problems are reported as messages.
func ValidateParsedStatement(stmt *models.ParsedStatement) ValidationResult {
	result := ValidationResult{Errors: []string{}}
	if stmt == nil {
		result.Errors = append(result.Errors, "Statement is missing")
		return result
	}

	if len(stmt.Transactions) == 0 {
		result.Errors = append(result.Errors, "Statement has no transactions")
	}
	if len(stmt.Categories) == 0 {
		result.Errors = append(result.Errors, "Statement has no categories")
	}

	deposits := models.SumAmounts(stmt.Transactions, models.Transaction.IsCredit)
	if deposits.Sub(stmt.Summary.TotalDeposits).Abs().GreaterThan(totalsTolerance) {
		result.Errors = append(result.Errors, fmt.Sprintf(
			"Deposit total mismatch: summary %s, transactions %s",
			stmt.Summary.TotalDeposits.StringFixed(2), deposits.StringFixed(2)))
	}

	withdrawals := models.SumAmounts(stmt.Transactions, models.Transaction.IsDebit)
	if withdrawals.Sub(stmt.Summary.TotalWithdrawals).Abs().GreaterThan(totalsTolerance) {
		result.Errors = append(result.Errors, fmt.Sprintf(
			"Withdrawal total mismatch: summary %s, transactions %s",
			stmt.Summary.TotalWithdrawals.StringFixed(2), withdrawals.StringFixed(2)))
	}

	if stmt.Summary.StartDate.After(stmt.Summary.EndDate) {
		result.Errors = append(result.Errors, "Start date is after end date")
	}

	result.IsValid = len(result.Errors) == 0
	return result
}
