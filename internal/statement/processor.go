// Package statement converts raw converter output into ParsedStatements:
// per-record conversion and categorization, summary aggregation, bank and
// account detection, and the per-category breakdown.
package statement

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"
	"time"
	"unicode"

	"fjacquet/statement-compare/internal/categorizer"
	"fjacquet/statement-compare/internal/logging"
	"fjacquet/statement-compare/internal/models"
	"fjacquet/statement-compare/internal/parsererror"
)

// Categorizer assigns a category to a debit description.
type Categorizer interface {
	Categorize(description string) string
}

// Processor converts APIResponses into ParsedStatements.
type Processor struct {
	categorizer Categorizer
	logger      logging.Logger
	now         func() time.Time
}

// NewProcessor returns a Processor. A nil categorizer uses the built-in rules.
func NewProcessor(c Categorizer, logger logging.Logger) *Processor {
	if c == nil {
		c = categorizer.Default()
	}
	return &Processor{
		categorizer: c,
		logger:      logging.OrDefault(logger),
		now:         time.Now,
	}
}

// ConvertToInternalFormat converts one converter response. Malformed records
// are logged and skipped; the call fails with a ValidationError when the
// transaction list is missing or no record survives.
func (p *Processor) ConvertToInternalFormat(resp *APIResponse, filename string) (*models.ParsedStatement, error) {
	if resp == nil || resp.Normalised == nil {
		return nil, &parsererror.ValidationError{
			FilePath: filename,
			Reason:   "missing normalised transactions",
			Err:      parsererror.ErrMissingTransactions,
		}
	}

	logger := p.logger.WithField(logging.FieldFile, filename)
	transactions := make([]models.Transaction, 0, len(resp.Normalised))
	for i, raw := range resp.Normalised {
		tx, err := p.convertTransaction(i, raw)
		if err != nil {
			var recErr *parsererror.RecordError
			if errors.As(err, &recErr) {
				logger.Warn("Skipping invalid transaction record",
					logging.F(logging.FieldRecordIndex, recErr.Index),
					logging.F(logging.FieldReason, recErr.Error()))
			}
			continue
		}
		transactions = append(transactions, tx)
	}

	if len(transactions) == 0 {
		return nil, &parsererror.ValidationError{
			FilePath: filename,
			Reason:   parsererror.ErrNoValidTransactions.Error(),
			Err:      parsererror.ErrNoValidTransactions,
		}
	}

	summary := Summarize(transactions, p.now())
	summary.BankName = DetectBankName(filename)
	summary.AccountNumber = DetectAccountNumber(transactions)

	logger.Info("Converted statement",
		logging.F(logging.FieldCount, len(transactions)),
		logging.F("skipped", len(resp.Normalised)-len(transactions)))

	return &models.ParsedStatement{
		Summary:      summary,
		Transactions: transactions,
		Categories:   BuildCategoryBreakdown(transactions),
	}, nil
}

func (p *Processor) convertTransaction(index int, raw APITransaction) (models.Transaction, error) {
	if m := raw.malformed; m != nil {
		return models.Transaction{}, &parsererror.RecordError{Index: index, Field: m.field, Value: m.value, Err: m.err}
	}
	description := strings.TrimSpace(raw.Description)
	if description == "" {
		return models.Transaction{}, &parsererror.RecordError{Index: index, Field: "description", Err: errors.New("missing")}
	}
	if strings.TrimSpace(string(raw.Amount)) == "" {
		return models.Transaction{}, &parsererror.RecordError{Index: index, Field: "amount", Err: errors.New("missing")}
	}

	signed, err := models.ParseAmount(string(raw.Amount))
	if err != nil {
		return models.Transaction{}, &parsererror.RecordError{Index: index, Field: "amount", Value: string(raw.Amount), Err: err}
	}
	date, err := ParseDate(raw.Date)
	if err != nil {
		return models.Transaction{}, &parsererror.RecordError{Index: index, Field: "date", Value: raw.Date, Err: err}
	}

	tx := models.Transaction{
		Date:        date,
		Description: description,
		Amount:      signed.Abs(),
	}
	if signed.IsNegative() {
		tx.Type = models.TypeDebit
		tx.Category = p.categorizer.Categorize(description)
		if tx.Category == models.CategoryIncome {
			tx.Category = models.DefaultCategory
		}
	} else {
		tx.Type = models.TypeCredit
		tx.Category = models.CategoryIncome
	}
	return tx, nil
}

// Summarize totals deposits and withdrawals (rounded to cents) and spans the
// transaction dates. With no transactions both dates are fallback.
func Summarize(transactions []models.Transaction, fallback time.Time) models.StatementSummary {
	summary := models.StatementSummary{
		TotalDeposits:    models.Round2(models.SumAmounts(transactions, models.Transaction.IsCredit)),
		TotalWithdrawals: models.Round2(models.SumAmounts(transactions, models.Transaction.IsDebit)),
	}

	for _, tx := range transactions {
		if tx.Date.IsZero() {
			continue
		}
		if summary.StartDate.IsZero() || tx.Date.Before(summary.StartDate) {
			summary.StartDate = tx.Date
		}
		if summary.EndDate.IsZero() || tx.Date.After(summary.EndDate) {
			summary.EndDate = tx.Date
		}
	}
	if summary.StartDate.IsZero() {
		summary.StartDate = fallback
		summary.EndDate = fallback
	}
	return summary
}

// BuildCategoryBreakdown groups transactions by category. Each group's
// transactions are sorted newest first and groups are sorted by total, largest
// first; equal totals keep first-seen order.
func BuildCategoryBreakdown(transactions []models.Transaction) []models.CategoryBreakdown {
	index := make(map[string]int)
	var groups []models.CategoryBreakdown

	for _, tx := range transactions {
		i, ok := index[tx.Category]
		if !ok {
			i = len(groups)
			index[tx.Category] = i
			groups = append(groups, models.CategoryBreakdown{Category: tx.Category})
		}
		groups[i].Transactions = append(groups[i].Transactions, tx)
	}

	for i := range groups {
		g := &groups[i]
		g.TotalAmount = models.Round2(models.SumAmounts(g.Transactions, nil))
		g.TransactionCount = len(g.Transactions)
		sort.SliceStable(g.Transactions, func(a, b int) bool {
			return g.Transactions[a].Date.After(g.Transactions[b].Date)
		})
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].TotalAmount.GreaterThan(groups[b].TotalAmount)
	})
	if groups == nil {
		groups = []models.CategoryBreakdown{}
	}
	return groups
}

type bankPattern struct {
	pattern string
	name    string
}

var bankPatterns = []bankPattern{
	{"bank of america", "Bank of America"},
	{"bankofamerica", "Bank of America"},
	{"bofa", "Bank of America"},
	{"chase", "Chase"},
	{"wells fargo", "Wells Fargo"},
	{"wellsfargo", "Wells Fargo"},
	{"capital one", "Capital One"},
	{"capitalone", "Capital One"},
	{"citibank", "Citibank"},
	{"us bank", "U.S. Bank"},
	{"usbank", "U.S. Bank"},
	{"pnc", "PNC Bank"},
	{"td bank", "TD Bank"},
	{"truist", "Truist"},
	{"american express", "American Express"},
	{"amex", "American Express"},
	{"discover", "Discover"},
	{"schwab", "Charles Schwab"},
	{"navy federal", "Navy Federal Credit Union"},
	{"usaa", "USAA"},
}

// Short names that only match a whole word of the file name ("citi" but not "city").
var wordBankPatterns = []bankPattern{
	{"citi", "Citibank"},
}

// UnknownBank is reported when the file name matches no known bank.
const UnknownBank = "Unknown Bank"

// DetectBankName matches the file name against the known bank names, ignoring
// case and treating '_' and '-' as spaces.
func DetectBankName(filename string) string {
	name := strings.ToLower(filename)
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	for _, bank := range bankPatterns {
		if strings.Contains(name, bank.pattern) {
			return bank.name
		}
	}
	words := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, bank := range wordBankPatterns {
		if slices.Contains(words, bank.pattern) {
			return bank.name
		}
	}
	return UnknownBank
}

var accountPattern = regexp.MustCompile(`(?i)ending\s+in\s+(\d{4})`)

// UnknownAccount is reported when no description reveals the account number.
const UnknownAccount = "Unknown"

// accountScanLimit is how many leading descriptions are scanned.
const accountScanLimit = 5

// DetectAccountNumber scans the first descriptions for "ending in NNNN" and
// returns the masked number "****NNNN".
func DetectAccountNumber(transactions []models.Transaction) string {
	for i, tx := range transactions {
		if i >= accountScanLimit {
			break
		}
		if m := accountPattern.FindStringSubmatch(tx.Description); m != nil {
			return fmt.Sprintf("****%s", m[1])
		}
	}
	return UnknownAccount
}
