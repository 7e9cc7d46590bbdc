package models

// CategoryKeywordRule assigns a category to any transaction whose description
// contains Keyword (case-insensitive substring). Rules are unordered; the
// first match wins with no priority or conflict resolution.
type CategoryKeywordRule struct {
	RuleID     string `json:"ruleID"`
	UserID     string `json:"userID"`
	Keyword    string `json:"keyword"`
	CategoryID string `json:"categoryID"`
	AuditFields
}
