package user

// UserResponse defines the response structure for user information.
type UserResponse struct {
	ID            uint        `json:"id"`
	Username      string      `json:"username"`
	Role          string      `json:"role"`
	IsActive      bool        `json:"is_active"`
	Balance       int64       `json:"balance"`
	CreditLimit   int64       `json:"credit_limit"`
	TotalConsumed int64       `json:"total_consumed"`
	Credit        *CreditInfo `json:"credit,omitempty"`
	Token         string      `json:"token,omitempty"`
}

// CreditInfo defines the structure for credit details
type CreditInfo struct {
	Total           int64   `json:"total"`
	Used            int64   `json:"used"`
	Available       int64   `json:"available"`
	UsagePercentage float64 `json:"usagePercentage"`
}
