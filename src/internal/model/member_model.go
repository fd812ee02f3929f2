package model

import "time"

type CheckPhoneRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,max=20"`
}

type CheckPhoneResponse struct {
	IsRegistered        bool    `json:"is_registered"`
	MemberID            *uint64 `json:"member_id"`
	RegistrationAllowed bool    `json:"registration_allowed"`
}

type VerifySponsorRequest struct {
	SponsorCode string `json:"sponsor_code" validate:"required,max=100"`
}

type SponsorResponse struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	SellerID       string `json:"seller_id"`
	Level          int    `json:"level"`
	DownlinesCount int    `json:"downlines_count"`
	MaxDownlines   int    `json:"max_downlines"`
}

type RegisterMemberRequest struct {
	FirstName    string `json:"first_name" validate:"required,max=255"`
	LastName     string `json:"last_name" validate:"required,max=255"`
	PhoneNumber  string `json:"phone_number" validate:"required,max=20"`
	Pin          string `json:"pin" validate:"required,len=4,numeric"`
	Email        string `json:"email" validate:"omitempty,email"`
	ShopName     string `json:"shop_name" validate:"required,max=255"`
	ShopLocation string `json:"shop_location" validate:"required,max=255"`
	SponsorCode  string `json:"sponsor_code" validate:"required,max=100"`
	ProfileImage string `json:"profile_image" validate:"omitempty,base64"`
}

type MemberResponse struct {
	ID             uint64     `json:"id"`
	SellerID       string     `json:"seller_id"`
	FullName       string     `json:"full_name"`
	PhoneNumber    string     `json:"phone_number"`
	Email          string     `json:"email,omitempty"`
	ShopName       string     `json:"shop_name,omitempty"`
	UplineID       string     `json:"upline_id,omitempty"`
	SellerLevel    int        `json:"seller_level"`
	TotalDownlines int        `json:"total_downlines"`
	AccountStatus  string     `json:"account_status"`
	PhotoPath      string     `json:"photo_path,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
}

type RegisterMemberResponse struct {
	Member       *MemberResponse `json:"member"`
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	Sponsor      SponsorSummary  `json:"sponsor"`
}

type SponsorSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level int    `json:"level"`
}

type LoginRequest struct {
	Phone string `json:"phone" validate:"required,max=20"`
	Pin   string `json:"password" validate:"required,len=4,numeric"`
}

type LoginResponse struct {
	Token        string          `json:"token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	User         *MemberResponse `json:"user"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}
