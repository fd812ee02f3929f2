package model

import "time"

type TeamMemberResponse struct {
	SellerID       string    `json:"seller_id"`
	Name           string    `json:"name"`
	PhoneNumber    string    `json:"phone_number"`
	Level          int       `json:"level"`
	TotalDownlines int       `json:"total_downlines"`
	AccountStatus  string    `json:"account_status"`
	JoinDate       time.Time `json:"join_date"`
}

type TeamPerformanceResponse struct {
	TotalMembers    int     `json:"total_members"`
	ActiveMembers   int     `json:"active_members"`
	PerformanceRate float64 `json:"performance_rate"`
}

type MemberPerformanceResponse struct {
	MemberID       string    `json:"member_id"`
	Name           string    `json:"name"`
	DownlinesCount int       `json:"downlines_count"`
	Level          int       `json:"level"`
	JoinDate       time.Time `json:"join_date"`
}

type SearchTeamRequest struct {
	Query string `json:"query" validate:"omitempty,max=100"`
}

type AddDownlinerRequest struct {
	MemberNumber string `json:"memberNumber" validate:"required,max=100"`
}

type ReferralCodeResponse struct {
	Code string `json:"code"`
}

// HierarchyNode is one level of the downline tree. Children is empty past
// the configured depth limit.
type HierarchyNode struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Level    int             `json:"level"`
	JoinDate time.Time       `json:"join_date"`
	Children []HierarchyNode `json:"children"`
}
