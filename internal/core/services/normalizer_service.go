package services

import (
	"log/slog"
	"strings"

	"github.com/finsight-app/finsight_backend/internal/dto"
	"github.com/finsight-app/finsight_backend/internal/models"
)

// activityTypeTable maps provider activity-type codes to canonical types.
// Codes absent from both this table and the special-case sets fall back to
// amount-sign direction.
var activityTypeTable = map[string]models.TransactionType{
	"PIX_IN":                 models.Income,
	"DEPOSIT":                models.Income,
	"SALARY":                 models.Income,
	"REFUND":                 models.Income,
	"PIX_OUT":                models.Expense,
	"CARD_PAYMENT":           models.Expense,
	"PURCHASE":               models.Expense,
	"BILL_PAYMENT":           models.Expense,
	"FEE":                    models.Expense,
	"WITHDRAWAL":             models.Expense,
	"INTERNAL_TRANSFER":      models.Transfer,
	"INVESTMENT_APPLICATION": models.Investment,
	"INVESTMENT_REDEMPTION":  models.Investment,
}

// ambiguousTypes cover both incoming and outgoing movements; direction comes
// from the sign on the raw amount, not the code.
var ambiguousTypes = map[string]struct{}{
	"TRANSFER": {},
	"PIX":      {},
}

// skippedTypes never settle into a real transaction (e.g. card authorization
// holds) and produce no canonical record at all.
var skippedTypes = map[string]struct{}{
	"CARD_AUTH_HOLD": {},
}

// NormalizerService turns raw provider activities into canonical
// transactions: type classification, description fallback chain, and keyword
// auto-categorization.
type NormalizerService struct {
	logger *slog.Logger
}

// NewNormalizerService creates a new NormalizerService.
func NewNormalizerService(logger *slog.Logger) *NormalizerService {
	return &NormalizerService{logger: logger}
}

// Classify maps a raw activity to its canonical type. skip is true for
// activity types that must not produce a transaction at all. Unrecognized
// codes fall back to amount-sign direction with a diagnostic; the fallback is
// deliberate, pending an exhaustive provider type table.
func (s *NormalizerService) Classify(raw dto.RawActivity) (txnType models.TransactionType, skip bool) {
	if _, ok := skippedTypes[raw.Type]; ok {
		return "", true
	}
	if _, ok := ambiguousTypes[raw.Type]; ok {
		return s.bySign(raw), false
	}
	if t, ok := activityTypeTable[raw.Type]; ok {
		return t, false
	}

	s.logger.Warn("Unrecognized activity type, falling back to amount-sign direction",
		slog.String("activity_type", raw.Type), slog.String("activity_id", raw.ID))
	return s.bySign(raw), false
}

func (s *NormalizerService) bySign(raw dto.RawActivity) models.TransactionType {
	if raw.Amount.IsPositive() {
		return models.Income
	}
	return models.Expense
}

// Describe returns the first non-empty value from the fallback chain:
// explicit description, payment reference, merchant name, then a fixed
// placeholder.
func (s *NormalizerService) Describe(raw dto.RawActivity) string {
	for _, candidate := range []string{raw.Description, raw.PaymentReference, raw.MerchantName} {
		if v := strings.TrimSpace(candidate); v != "" {
			return v
		}
	}
	return "Unknown transaction"
}

// Categorize returns the category of the first rule whose keyword is a
// case-insensitive substring of the description, or nil when none match.
// Rules carry no priority; first match in whatever order they arrive wins.
func (s *NormalizerService) Categorize(description string, rules []models.CategoryKeywordRule) *string {
	lowered := strings.ToLower(description)
	for _, rule := range rules {
		if rule.Keyword == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(rule.Keyword)) {
			categoryID := rule.CategoryID
			return &categoryID
		}
	}
	return nil
}
