package converter

import (
	"member-service/src/internal/entity"
	"member-service/src/internal/model"
)

func MemberToResponse(member *entity.Member) *model.MemberResponse {
	return &model.MemberResponse{
		ID:             member.ID,
		SellerID:       member.SellerID,
		FullName:       member.FullName,
		PhoneNumber:    member.PhoneNumber,
		Email:          member.Email.String,
		ShopName:       member.ShopName,
		UplineID:       member.UplineID.String,
		SellerLevel:    member.SellerLevel,
		TotalDownlines: member.TotalDownlines,
		AccountStatus:  member.AccountStatus,
		PhotoPath:      member.PhotoPath.String,
		CreatedAt:      member.CreatedAt,
		LastLoginAt:    member.LastLoginAt,
	}
}

func MemberToTeamResponse(member *entity.Member) model.TeamMemberResponse {
	return model.TeamMemberResponse{
		SellerID:       member.SellerID,
		Name:           member.FullName,
		PhoneNumber:    member.PhoneNumber,
		Level:          member.SellerLevel,
		TotalDownlines: member.TotalDownlines,
		AccountStatus:  member.AccountStatus,
		JoinDate:       member.CreatedAt,
	}
}

func TransactionToResponse(txn *entity.Transaction) model.TransactionResponse {
	return model.TransactionResponse{
		Reference:   txn.Reference,
		Type:        txn.Type,
		Amount:      txn.Amount,
		Description: txn.Description.String,
		Status:      txn.Status,
		Date:        txn.CreatedAt,
	}
}
