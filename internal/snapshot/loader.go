package snapshot

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	"finance-cycle-engine/internal/models"
	"finance-cycle-engine/pkg/errors"
	"finance-cycle-engine/pkg/logger"

	"github.com/shopspring/decimal"
)

// LoaderConfig bounds how tolerant a load pass is.
type LoaderConfig struct {
	// MaxErrors aborts the load once this many record errors accumulate.
	MaxErrors int

	// ContinueOnError keeps loading past non-recoverable record errors.
	ContinueOnError bool
}

// DefaultLoaderConfig returns a configuration with sensible defaults
func DefaultLoaderConfig() *LoaderConfig {
	return &LoaderConfig{
		MaxErrors:       100,
		ContinueOnError: true,
	}
}

// Validate validates the loader configuration
func (c *LoaderConfig) Validate() error {
	if c.MaxErrors <= 0 {
		return errors.ConfigurationError(errors.CodeInvalidConfig,
			"max_errors", c.MaxErrors, nil)
	}
	return nil
}

// Loader reads snapshot JSON exports into domain records.
type Loader struct {
	config *LoaderConfig
	logger logger.Logger
}

// NewLoader creates a loader with the given configuration.
func NewLoader(config *LoaderConfig) (*Loader, error) {
	if config == nil {
		config = DefaultLoaderConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Loader{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("snapshot_loader"),
	}, nil
}

// LoadAll loads every snapshot file. The tag status path may be empty; the
// other three are required.
func (l *Loader) LoadAll(transactionsPath, accountsPath, personsPath, tagStatusPath string) (*Snapshot, *LoadStats, error) {
	snap := &Snapshot{}
	stats := &LoadStats{}

	transactions, txStats, err := l.LoadTransactions(transactionsPath)
	if err != nil {
		return nil, stats, err
	}
	snap.Transactions = transactions
	stats.Merge(txStats)

	accounts, accStats, err := l.LoadAccounts(accountsPath)
	if err != nil {
		return nil, stats, err
	}
	snap.Accounts = accounts
	stats.Merge(accStats)

	persons, pStats, err := l.LoadPersons(personsPath)
	if err != nil {
		return nil, stats, err
	}
	snap.Persons = persons
	stats.Merge(pStats)

	if tagStatusPath != "" {
		statuses, sStats, err := l.LoadTagStatuses(tagStatusPath)
		if err != nil {
			return nil, stats, err
		}
		snap.TagStatuses = statuses
		stats.Merge(sStats)
	}

	l.logger.WithFields(logger.Fields{
		"transactions": len(snap.Transactions),
		"accounts":     len(snap.Accounts),
		"persons":      len(snap.Persons),
		"tag_statuses": len(snap.TagStatuses),
		"flagged":      stats.RecordsFlagged,
		"skipped":      stats.RecordsSkipped,
	}).Info("Snapshot loaded")

	return snap, stats, nil
}

// transactionRecord is the wire form of a transaction. Amount fields stay
// raw so a malformed value degrades to zero-and-flagged instead of failing
// the whole array decode.
type transactionRecord struct {
	ID                   string          `json:"id"`
	Type                 string          `json:"type"`
	Amount               json.RawMessage `json:"amount"`
	FinalPrice           json.RawMessage `json:"final_price"`
	CashbackSharePercent json.RawMessage `json:"cashback_share_percent"`
	CashbackShareFixed   json.RawMessage `json:"cashback_share_fixed"`
	PersonID             string          `json:"person_id"`
	AccountID            string          `json:"account_id"`
	TargetAccountID      string          `json:"target_account_id"`
	CategoryID           string          `json:"category_id"`
	Tag                  string          `json:"tag"`
	OccurredAt           string          `json:"occurred_at"`
	Note                 string          `json:"note"`
	Status               string          `json:"status"`
	Metadata             json.RawMessage `json:"metadata"`
}

// LoadTransactions loads the transaction export.
func (l *Loader) LoadTransactions(path string) ([]*models.Transaction, *LoadStats, error) {
	var records []transactionRecord
	if err := l.readJSON(path, &records); err != nil {
		return nil, nil, err
	}

	stats := &LoadStats{}
	collector := errors.NewRecordErrorCollector(l.config.MaxErrors, l.config.ContinueOnError)
	transactions := make([]*models.Transaction, 0, len(records))

	for i, rec := range records {
		if strings.TrimSpace(rec.ID) == "" {
			stats.RecordsSkipped++
			if !collector.Add(errors.MissingIDRecordError(path, i)) {
				break
			}
			continue
		}

		tx := &models.Transaction{
			ID:              rec.ID,
			Type:            models.TransactionType(rec.Type),
			PersonID:        rec.PersonID,
			AccountID:       rec.AccountID,
			TargetAccountID: rec.TargetAccountID,
			CategoryID:      rec.CategoryID,
			Tag:             rec.Tag,
			Note:            rec.Note,
			Status:          models.TransactionStatus(rec.Status),
		}

		flagged := false

		amount, ok := parseAmount(rec.Amount)
		if !ok {
			flagged = true
			collector.Add(errors.InvalidAmountRecordError(path, rec.ID, "amount", string(rec.Amount)))
		}
		tx.Amount = amount

		if len(rec.FinalPrice) > 0 && !isJSONNull(rec.FinalPrice) {
			final, ok := parseAmount(rec.FinalPrice)
			if !ok {
				flagged = true
				collector.Add(errors.InvalidAmountRecordError(path, rec.ID, "final_price", string(rec.FinalPrice)))
			} else {
				tx.FinalPrice = &final
			}
		}

		if pct, ok := parseAmount(rec.CashbackSharePercent); ok {
			tx.CashbackSharePercent = pct
		}
		if fixed, ok := parseAmount(rec.CashbackShareFixed); ok {
			tx.CashbackShareFixed = fixed
		}

		occurredAt, ok := parseTimestamp(rec.OccurredAt)
		if !ok {
			flagged = true
			collector.Add(errors.InvalidTimestampRecordError(path, rec.ID, "occurred_at", rec.OccurredAt))
		}
		tx.OccurredAt = occurredAt

		if len(rec.Metadata) > 0 && !isJSONNull(rec.Metadata) {
			var meta models.Metadata
			if err := json.Unmarshal(rec.Metadata, &meta); err != nil {
				flagged = true
				collector.Add(errors.InvalidMetadataRecordError(path, rec.ID, err))
			} else {
				tx.Metadata = meta
			}
		}

		if flagged {
			stats.RecordsFlagged++
		}
		stats.RecordsLoaded++
		transactions = append(transactions, tx)
	}

	stats.Errors = collector.GetErrors()
	return transactions, stats, nil
}

// LoadAccounts loads the account export. Account cashback configs arrive
// either as JSON objects or as double-encoded JSON strings; the model's
// unmarshaler handles both.
func (l *Loader) LoadAccounts(path string) ([]*models.Account, *LoadStats, error) {
	var records []*models.Account
	if err := l.readJSON(path, &records); err != nil {
		return nil, nil, err
	}

	stats := &LoadStats{}
	collector := errors.NewRecordErrorCollector(l.config.MaxErrors, l.config.ContinueOnError)
	accounts := make([]*models.Account, 0, len(records))

	for i, acc := range records {
		if acc == nil || strings.TrimSpace(acc.ID) == "" {
			stats.RecordsSkipped++
			if !collector.Add(errors.MissingIDRecordError(path, i)) {
				break
			}
			continue
		}

		if err := acc.Validate(); err != nil {
			stats.RecordsFlagged++
			collector.Add(errors.NewRecordParseError(errors.CodeInvalidRecord,
				&errors.RecordContext{File: path, RecordID: acc.ID},
				"invalid account record", err))
		}

		stats.RecordsLoaded++
		accounts = append(accounts, acc)
	}

	stats.Errors = collector.GetErrors()
	return accounts, stats, nil
}

// LoadPersons loads the person directory export.
func (l *Loader) LoadPersons(path string) ([]*models.Person, *LoadStats, error) {
	var records []*models.Person
	if err := l.readJSON(path, &records); err != nil {
		return nil, nil, err
	}

	stats := &LoadStats{}
	collector := errors.NewRecordErrorCollector(l.config.MaxErrors, l.config.ContinueOnError)
	persons := make([]*models.Person, 0, len(records))

	for i, p := range records {
		if p == nil || strings.TrimSpace(p.ID) == "" {
			stats.RecordsSkipped++
			if !collector.Add(errors.MissingIDRecordError(path, i)) {
				break
			}
			continue
		}

		if err := p.Validate(); err != nil {
			stats.RecordsFlagged++
			collector.Add(errors.NewRecordParseError(errors.CodeInvalidRecord,
				&errors.RecordContext{File: path, RecordID: p.ID},
				"invalid person record", err))
		}

		stats.RecordsLoaded++
		persons = append(persons, p)
	}

	stats.Errors = collector.GetErrors()
	return persons, stats, nil
}

// tagStatusRecord keeps the principal raw for the same degrade-to-flagged
// handling as transaction amounts.
type tagStatusRecord struct {
	PersonID           string          `json:"person_id"`
	Tag                string          `json:"tag"`
	RemainingPrincipal json.RawMessage `json:"remaining_principal"`
	Status             string          `json:"status"`
	Links              []string        `json:"links"`
}

// LoadTagStatuses loads the optional authoritative cycle status export.
func (l *Loader) LoadTagStatuses(path string) ([]*models.DebtTagStatus, *LoadStats, error) {
	var records []tagStatusRecord
	if err := l.readJSON(path, &records); err != nil {
		return nil, nil, err
	}

	stats := &LoadStats{}
	collector := errors.NewRecordErrorCollector(l.config.MaxErrors, l.config.ContinueOnError)
	statuses := make([]*models.DebtTagStatus, 0, len(records))

	for i, rec := range records {
		if strings.TrimSpace(rec.Tag) == "" {
			stats.RecordsSkipped++
			if !collector.Add(errors.MissingIDRecordError(path, i)) {
				break
			}
			continue
		}

		status := &models.DebtTagStatus{
			PersonID: rec.PersonID,
			Tag:      rec.Tag,
			Status:   rec.Status,
			Links:    rec.Links,
		}

		if len(rec.RemainingPrincipal) > 0 && !isJSONNull(rec.RemainingPrincipal) {
			principal, ok := parseAmount(rec.RemainingPrincipal)
			if !ok {
				stats.RecordsFlagged++
				collector.Add(errors.InvalidAmountRecordError(path, rec.Tag,
					"remaining_principal", string(rec.RemainingPrincipal)))
			} else {
				status.RemainingPrincipal = &principal
			}
		}

		stats.RecordsLoaded++
		statuses = append(statuses, status)
	}

	stats.Errors = collector.GetErrors()
	return statuses, stats, nil
}

func (l *Loader) readJSON(path string, target interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.SnapshotError(errors.CodeSnapshotNotFound, path, err)
		}
		return errors.SnapshotError(errors.CodeSnapshotAccess, path, err)
	}

	if err := json.Unmarshal(data, target); err != nil {
		return errors.SnapshotError(errors.CodeSnapshotCorrupted, path, err)
	}
	return nil
}

// parseAmount reads a raw JSON value as a decimal. Numbers and quoted
// numbers both parse; anything else reports false and the caller decides
// whether that is a flaggable condition or just an absent optional field.
func parseAmount(raw json.RawMessage) (decimal.Decimal, bool) {
	if len(raw) == 0 || isJSONNull(raw) {
		return decimal.Zero, true
	}

	text := strings.TrimSpace(string(raw))
	if unquoted, err := strconv.Unquote(text); err == nil {
		text = strings.TrimSpace(unquoted)
	}
	if text == "" {
		return decimal.Zero, true
	}

	value, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, false
	}
	return value, true
}

// parseTimestamp accepts RFC 3339 timestamps and bare dates.
func parseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts, true
	}
	if ts, err := time.Parse("2006-01-02", value); err == nil {
		return ts, true
	}
	return time.Time{}, false
}

func isJSONNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
