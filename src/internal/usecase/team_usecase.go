package usecase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"member-service/src/internal/entity"
	"member-service/src/internal/model"
	"member-service/src/internal/model/converter"
	"member-service/src/internal/repository"
	"member-service/src/pkg/databases/mysql"
	httpError "member-service/src/pkg/http-error"
	"member-service/src/pkg/log"
	"member-service/src/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/viper"
)

const defaultHierarchyMaxDepth = 3

type TeamUseCase struct {
	Log              log.Log
	Validate         *validator.Validate
	Config           *viper.Viper
	DB               mysql.DBInterface
	MemberRepository *repository.MemberRepository
	Sponsor          *SponsorPolicy
}

func NewTeamUseCase(
	logger log.Log,
	validate *validator.Validate,
	cfg *viper.Viper,
	db mysql.DBInterface,
	memberRepository *repository.MemberRepository,
	sponsor *SponsorPolicy,
) *TeamUseCase {
	return &TeamUseCase{
		Log:              logger,
		Validate:         validate,
		Config:           cfg,
		DB:               db,
		MemberRepository: memberRepository,
		Sponsor:          sponsor,
	}
}

func (c *TeamUseCase) Members(ctx context.Context, sellerID string) utils.Result {
	var result utils.Result

	downlines, err := c.MemberRepository.ListDownlines(ctx, sellerID)
	if err != nil {
		c.Log.Error("team-usecase", err.Error(), "Members", sellerID)
		result.Error = httpError.NewInternalServerError()
		return result
	}

	responses := make([]model.TeamMemberResponse, 0, len(downlines))
	for i := range downlines {
		responses = append(responses, converter.MemberToTeamResponse(&downlines[i]))
	}
	result.Data = responses
	return result
}

func (c *TeamUseCase) Upliner(ctx context.Context, sellerID string) utils.Result {
	var result utils.Result

	member, err := c.MemberRepository.FindBySellerID(ctx, sellerID)
	if err != nil {
		errObj := httpError.NewNotFound()
		errObj.Message = "member not found"
		result.Error = errObj
		return result
	}
	if !member.UplineID.Valid {
		errObj := httpError.NewNotFound()
		errObj.Message = "You do not have an upliner."
		result.Error = errObj
		return result
	}

	upline, err := c.MemberRepository.FindBySellerID(ctx, member.UplineID.String)
	if err != nil {
		errObj := httpError.NewNotFound()
		errObj.Message = "Upliner not found."
		result.Error = errObj
		c.Log.Warn("team-usecase", "dangling upline reference", "Upliner", member.UplineID.String)
		return result
	}

	result.Data = converter.MemberToTeamResponse(upline)
	return result
}

func (c *TeamUseCase) Performance(ctx context.Context, sellerID string) utils.Result {
	var result utils.Result

	downlines, err := c.MemberRepository.ListDownlines(ctx, sellerID)
	if err != nil {
		c.Log.Error("team-usecase", err.Error(), "Performance", sellerID)
		result.Error = httpError.NewInternalServerError()
		return result
	}

	active := 0
	for i := range downlines {
		if downlines[i].AccountStatus == entity.StatusActive {
			active++
		}
	}
	rate := 0.0
	if len(downlines) > 0 {
		rate = float64(active) / float64(len(downlines)) * 100
	}

	result.Data = &model.TeamPerformanceResponse{
		TotalMembers:    len(downlines),
		ActiveMembers:   active,
		PerformanceRate: rate,
	}
	return result
}

// MemberPerformance reports on a single downliner. The target must belong to
// the caller's team.
func (c *TeamUseCase) MemberPerformance(ctx context.Context, sellerID, targetSellerID string) utils.Result {
	var result utils.Result

	target, err := c.MemberRepository.FindBySellerID(ctx, targetSellerID)
	if err != nil {
		errObj := httpError.NewNotFound()
		errObj.Message = "member not found"
		result.Error = errObj
		return result
	}
	if !target.UplineID.Valid || target.UplineID.String != sellerID {
		errObj := httpError.NewForbidden()
		errObj.Message = "This member is not part of your team."
		result.Error = errObj
		return result
	}

	result.Data = &model.MemberPerformanceResponse{
		MemberID:       target.SellerID,
		Name:           target.FullName,
		DownlinesCount: target.TotalDownlines,
		Level:          target.SellerLevel,
		JoinDate:       target.CreatedAt,
	}
	return result
}

func (c *TeamUseCase) Search(ctx context.Context, sellerID string, request *model.SearchTeamRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = fmt.Sprintf("validation error: %v", err.Error())
		result.Error = errObj
		return result
	}

	downlines, err := c.MemberRepository.SearchDownlines(ctx, sellerID, request.Query)
	if err != nil {
		c.Log.Error("team-usecase", err.Error(), "Search", sellerID)
		result.Error = httpError.NewInternalServerError()
		return result
	}

	responses := make([]model.TeamMemberResponse, 0, len(downlines))
	for i := range downlines {
		responses = append(responses, converter.MemberToTeamResponse(&downlines[i]))
	}
	result.Data = responses
	return result
}

// AddDownliner attaches an existing member without an upline to the caller's
// team. Capacity is enforced the same way as registration, under the sponsor
// row lock.
func (c *TeamUseCase) AddDownliner(ctx context.Context, sellerID string, request *model.AddDownlinerRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = fmt.Sprintf("validation error: %v", err.Error())
		result.Error = errObj
		return result
	}

	target, err := c.MemberRepository.FindBySellerID(ctx, request.MemberNumber)
	if err != nil {
		errObj := httpError.NewNotFound()
		errObj.Message = "Member not found."
		result.Error = errObj
		return result
	}
	if target.SellerID == sellerID {
		errObj := httpError.NewUnprocessableEntity()
		errObj.Message = "You cannot add yourself as a downliner."
		result.Error = errObj
		return result
	}
	if target.UplineID.Valid {
		errObj := httpError.NewUnprocessableEntity()
		errObj.Message = "This member already has an upliner."
		result.Error = errObj
		return result
	}

	db, err := c.DB.GetDB()
	if err != nil {
		result.Error = httpError.NewInternalServerError()
		return result
	}

	txErr := mysql.WithTransaction(ctx, db, func(tx *sqlx.Tx) error {
		if _, errObj := c.Sponsor.ValidateSponsorTx(ctx, tx, sellerID); errObj != nil {
			return errObj
		}
		if err := c.MemberRepository.AssignUplineTx(ctx, tx, target.SellerID, sellerID); err != nil {
			return err
		}
		return c.MemberRepository.IncrementDownlinesTx(ctx, tx, sellerID)
	})
	if txErr != nil {
		var commonErr *httpError.CommonError
		if errors.As(txErr, &commonErr) {
			result.Error = commonErr
			return result
		}
		c.Log.Error("team-usecase", txErr.Error(), "AddDownliner", sellerID)
		result.Error = httpError.NewInternalServerError()
		return result
	}

	c.Log.Info("team-usecase", "downliner added", "AddDownliner", target.SellerID)
	result.Data = converter.MemberToTeamResponse(target)
	return result
}

func (c *TeamUseCase) ReferralCode(ctx context.Context, sellerID string) utils.Result {
	var result utils.Result

	member, err := c.MemberRepository.FindBySellerID(ctx, sellerID)
	if err != nil {
		errObj := httpError.NewNotFound()
		errObj.Message = "member not found"
		result.Error = errObj
		return result
	}

	result.Data = &model.ReferralCodeResponse{Code: member.SellerID}
	return result
}

// Hierarchy walks the downline tree, bounded by the configured depth so a
// deep network cannot blow up the response.
func (c *TeamUseCase) Hierarchy(ctx context.Context, sellerID string) utils.Result {
	var result utils.Result

	root, err := c.MemberRepository.FindBySellerID(ctx, sellerID)
	if err != nil {
		errObj := httpError.NewNotFound()
		errObj.Message = "member not found"
		result.Error = errObj
		return result
	}

	maxDepth := defaultHierarchyMaxDepth
	if c.Config.IsSet("team.hierarchy_max_depth") {
		maxDepth = c.Config.GetInt("team.hierarchy_max_depth")
	}

	children, err := c.buildHierarchy(ctx, root.SellerID, 1, maxDepth)
	if err != nil {
		c.Log.Error("team-usecase", err.Error(), "Hierarchy", sellerID)
		result.Error = httpError.NewInternalServerError()
		return result
	}

	result.Data = &model.HierarchyNode{
		ID:       root.SellerID,
		Name:     root.FullName,
		Level:    root.SellerLevel,
		JoinDate: root.CreatedAt,
		Children: children,
	}
	return result
}

func (c *TeamUseCase) buildHierarchy(ctx context.Context, sellerID string, depth, maxDepth int) ([]model.HierarchyNode, error) {
	if depth > maxDepth {
		return []model.HierarchyNode{}, nil
	}

	downlines, err := c.MemberRepository.ListActiveDownlines(ctx, sellerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []model.HierarchyNode{}, nil
		}
		return nil, err
	}

	nodes := make([]model.HierarchyNode, 0, len(downlines))
	for i := range downlines {
		children, err := c.buildHierarchy(ctx, downlines[i].SellerID, depth+1, maxDepth)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, model.HierarchyNode{
			ID:       downlines[i].SellerID,
			Name:     downlines[i].FullName,
			Level:    downlines[i].SellerLevel,
			JoinDate: downlines[i].CreatedAt,
			Children: children,
		})
	}
	return nodes, nil
}
