package usecase

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"member-service/src/internal/entity"
	"member-service/src/internal/gateway/messaging"
	"member-service/src/internal/gateway/storage"
	"member-service/src/internal/model"
	"member-service/src/internal/model/converter"
	"member-service/src/internal/repository"
	"member-service/src/pkg/databases/mysql"
	httpError "member-service/src/pkg/http-error"
	"member-service/src/pkg/log"
	"member-service/src/pkg/token"
	"member-service/src/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
	"googlemaps.github.io/maps"
)

type AuthUseCase struct {
	Log              log.Log
	Validate         *validator.Validate
	Config           *viper.Viper
	DB               mysql.DBInterface
	MemberRepository *repository.MemberRepository
	Sponsor          *SponsorPolicy
	Blocklist        BlockPolicy
	Redis            redis.UniversalClient
	MemberProducer   *messaging.MemberProducer
	PhotoStorage     *storage.PhotoStorage
	Geo              *maps.Client
}

func NewAuthUseCase(
	logger log.Log,
	validate *validator.Validate,
	cfg *viper.Viper,
	db mysql.DBInterface,
	memberRepository *repository.MemberRepository,
	sponsor *SponsorPolicy,
	blocklist BlockPolicy,
	redisClient redis.UniversalClient,
	memberProducer *messaging.MemberProducer,
	photoStorage *storage.PhotoStorage,
	geo *maps.Client,
) *AuthUseCase {
	return &AuthUseCase{
		Log:              logger,
		Validate:         validate,
		Config:           cfg,
		DB:               db,
		MemberRepository: memberRepository,
		Sponsor:          sponsor,
		Blocklist:        blocklist,
		Redis:            redisClient,
		MemberProducer:   memberProducer,
		PhotoStorage:     photoStorage,
		Geo:              geo,
	}
}

func (c *AuthUseCase) CheckPhone(ctx context.Context, request *model.CheckPhoneRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = fmt.Sprintf("validation error: %v", err.Error())
		result.Error = errObj
		c.Log.Error("auth-usecase", errObj.Message, "CheckPhone", utils.ConvertString(request))
		return result
	}

	if c.Blocklist.IsPhoneNumberBlocked(ctx, request.PhoneNumber) {
		errObj := httpError.NewForbidden()
		errObj.Message = "This phone number has been blocked. Please contact support."
		result.Error = errObj
		c.Log.Warn("auth-usecase", "blocked phone number attempt", "CheckPhone", request.PhoneNumber)
		return result
	}

	response := &model.CheckPhoneResponse{RegistrationAllowed: true}
	member, err := c.MemberRepository.FindByPhone(ctx, request.PhoneNumber)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		c.Log.Error("auth-usecase", err.Error(), "CheckPhone", request.PhoneNumber)
		result.Error = httpError.NewInternalServerError()
		return result
	}
	if member != nil {
		response.IsRegistered = true
		response.MemberID = &member.ID
	}

	result.Data = response
	return result
}

func (c *AuthUseCase) VerifySponsor(ctx context.Context, request *model.VerifySponsorRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = fmt.Sprintf("validation error: %v", err.Error())
		result.Error = errObj
		c.Log.Error("auth-usecase", errObj.Message, "VerifySponsor", utils.ConvertString(request))
		return result
	}

	if c.Blocklist.IsSponsorBlocked(ctx, request.SponsorCode) {
		errObj := httpError.NewForbidden()
		errObj.Message = "This sponsor code has been blocked. Please contact support."
		result.Error = errObj
		c.Log.Warn("auth-usecase", "blocked sponsor code attempt", "VerifySponsor", request.SponsorCode)
		return result
	}

	sponsor, count, errObj := c.Sponsor.ValidateSponsor(ctx, request.SponsorCode)
	if errObj != nil {
		result.Error = errObj
		c.Log.Error("auth-usecase", errObj.Message, "VerifySponsor", request.SponsorCode)
		return result
	}

	result.Data = &model.SponsorResponse{
		FirstName:      sponsor.FirstName,
		LastName:       sponsor.LastName,
		SellerID:       sponsor.SellerID,
		Level:          sponsor.SellerLevel,
		DownlinesCount: count,
		MaxDownlines:   c.Sponsor.MaxDownlines(sponsor.SellerLevel),
	}
	return result
}

// Register runs the whole registration as one unit of work: blocklist,
// sponsor capacity under a row lock, seller id allocation with bounded
// collision retries, member insert, token issuance, and the sponsor counter
// increment. Any failure rolls the whole thing back.
func (c *AuthUseCase) Register(ctx context.Context, request *model.RegisterMemberRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = fmt.Sprintf("validation error: %v", err.Error())
		result.Error = errObj
		c.Log.Error("auth-usecase", errObj.Message, "Register", request.PhoneNumber)
		return result
	}

	if c.Blocklist.IsPhoneNumberBlocked(ctx, request.PhoneNumber) {
		errObj := httpError.NewForbidden()
		errObj.Message = "This phone number has been blocked. Please contact support."
		result.Error = errObj
		c.Log.Warn("auth-usecase", "blocked phone number registration", "Register", request.PhoneNumber)
		return result
	}
	if c.Blocklist.IsSponsorBlocked(ctx, request.SponsorCode) {
		errObj := httpError.NewForbidden()
		errObj.Message = "This sponsor code has been blocked. Please contact support."
		result.Error = errObj
		c.Log.Warn("auth-usecase", "blocked sponsor code registration", "Register", request.SponsorCode)
		return result
	}

	if _, err := c.MemberRepository.FindByPhone(ctx, request.PhoneNumber); err == nil {
		errObj := httpError.NewUnprocessableEntity()
		errObj.Message = "This phone number is already registered."
		result.Error = errObj
		return result
	} else if !errors.Is(err, sql.ErrNoRows) {
		c.Log.Error("auth-usecase", err.Error(), "Register", request.PhoneNumber)
		result.Error = httpError.NewInternalServerError()
		return result
	}

	hashedPin, err := bcrypt.GenerateFromPassword([]byte(request.Pin), bcrypt.DefaultCost)
	if err != nil {
		c.Log.Error("auth-usecase", err.Error(), "Register", "hash pin")
		result.Error = httpError.NewInternalServerError()
		return result
	}

	memberUUID := uuid.NewString()
	member := &entity.Member{
		UUID:              memberUUID,
		Pin:               string(hashedPin),
		PhoneNumber:       request.PhoneNumber,
		FirstName:         request.FirstName,
		LastName:          request.LastName,
		FullName:          request.FirstName + " " + request.LastName,
		ShopName:          request.ShopName,
		District:          sql.NullString{String: request.ShopLocation, Valid: true},
		SellerLevel:       1,
		CommissionBalance: decimal.Zero,
		AccountStatus:     entity.StatusActive,
	}
	if request.Email != "" {
		member.Email = sql.NullString{String: request.Email, Valid: true}
	}

	// side-effectful collaborators run before the transaction; both are
	// optional and a failure only loses the enrichment, not the registration
	if request.ProfileImage != "" && c.PhotoStorage != nil {
		if data, decodeErr := base64.StdEncoding.DecodeString(request.ProfileImage); decodeErr == nil {
			if path, upErr := c.PhotoStorage.UploadProfileImage(ctx, memberUUID, data, ""); upErr == nil {
				member.PhotoPath = sql.NullString{String: path, Valid: true}
			}
		}
	}
	if c.Geo != nil {
		if lat, lng, geoErr := c.geocodeShopLocation(ctx, request.ShopLocation); geoErr == nil {
			member.Latitude = sql.NullFloat64{Float64: lat, Valid: true}
			member.Longitude = sql.NullFloat64{Float64: lng, Valid: true}
		}
	}

	db, err := c.DB.GetDB()
	if err != nil {
		c.Log.Error("auth-usecase", err.Error(), "Register", "")
		result.Error = httpError.NewInternalServerError()
		return result
	}

	var sponsor *entity.Member
	var accessToken, refreshToken string

	txErr := mysql.WithTransaction(ctx, db, func(tx *sqlx.Tx) error {
		var errObj *httpError.CommonError
		sponsor, errObj = c.Sponsor.ValidateSponsorTx(ctx, tx, request.SponsorCode)
		if errObj != nil {
			return errObj
		}
		member.UplineID = sql.NullString{String: sponsor.SellerID, Valid: true}

		next, err := c.MemberRepository.NextMemberID(ctx, tx)
		if err != nil {
			return err
		}

		created := false
		for attempt := 0; attempt < sellerIDMaxAttempts; attempt++ {
			member.SellerID = FormatSellerID(next)
			id, err := c.MemberRepository.CreateTx(ctx, tx, member)
			if err != nil {
				if mysql.IsDuplicateEntry(err) {
					c.Log.Warn("auth-usecase", "seller id collision, retrying", "Register", member.SellerID)
					next += sellerIDCollisionOffset
					continue
				}
				return err
			}
			member.ID = id
			created = true
			break
		}
		if !created {
			return errors.New("could not allocate a unique seller id")
		}

		accessToken, refreshToken, err = token.Generate(c.Config, member.ID, member.SellerID, member.FullName)
		if err != nil {
			return err
		}

		return c.MemberRepository.IncrementDownlinesTx(ctx, tx, sponsor.SellerID)
	})
	if txErr != nil {
		var commonErr *httpError.CommonError
		if errors.As(txErr, &commonErr) {
			result.Error = commonErr
			c.Log.Error("auth-usecase", commonErr.Message, "Register", request.SponsorCode)
			return result
		}
		c.Log.Error("auth-usecase", txErr.Error(), "Register", request.PhoneNumber)
		errObj := httpError.NewInternalServerError()
		errObj.Message = "Registration failed. Please try again or contact support."
		result.Error = errObj
		return result
	}

	member.CreatedAt = time.Now()
	c.Log.Info("auth-usecase", "registration successful", "Register", member.SellerID)

	if c.MemberProducer != nil {
		event := &model.MemberRegisteredEvent{
			EventID:      uuid.NewString(),
			MemberID:     member.ID,
			SellerID:     member.SellerID,
			UplineID:     sponsor.SellerID,
			RegisteredAt: time.Now(),
		}
		if err := c.MemberProducer.SendRegistered(event); err != nil {
			c.Log.Error("auth-usecase", fmt.Sprintf("failed to publish member registered event: %v", err), "Register", member.SellerID)
		}
	}

	result.Data = &model.RegisterMemberResponse{
		Member:       converter.MemberToResponse(member),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		Sponsor: model.SponsorSummary{
			ID:    sponsor.SellerID,
			Name:  sponsor.FirstName + " " + sponsor.LastName,
			Level: sponsor.SellerLevel,
		},
	}
	return result
}

func (c *AuthUseCase) Login(ctx context.Context, request *model.LoginRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = fmt.Sprintf("validation error: %v", err.Error())
		result.Error = errObj
		c.Log.Error("auth-usecase", errObj.Message, "Login", request.Phone)
		return result
	}

	member, err := c.MemberRepository.FindByPhone(ctx, request.Phone)
	if err != nil {
		errObj := httpError.NewUnprocessableEntity()
		errObj.Message = "The provided credentials are incorrect."
		result.Error = errObj
		c.Log.Warn("auth-usecase", "login failed: member not found", "Login", request.Phone)
		return result
	}

	if err := bcrypt.CompareHashAndPassword([]byte(member.Pin), []byte(request.Pin)); err != nil {
		errObj := httpError.NewUnprocessableEntity()
		errObj.Message = "The provided credentials are incorrect."
		result.Error = errObj
		c.Log.Warn("auth-usecase", "login failed: invalid pin", "Login", request.Phone)
		return result
	}

	accessToken, refreshToken, err := token.Generate(c.Config, member.ID, member.SellerID, member.FullName)
	if err != nil {
		c.Log.Error("auth-usecase", err.Error(), "Login", request.Phone)
		result.Error = httpError.NewInternalServerError()
		return result
	}

	if err := c.MemberRepository.TouchLastLogin(ctx, member.ID); err != nil {
		c.Log.Error("auth-usecase", err.Error(), "Login", "touch last login")
	}

	result.Data = &model.LoginResponse{
		Token:        accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		User:         converter.MemberToResponse(member),
	}
	return result
}

// Refresh revokes the presented pair and issues a new one. The revocation
// mark means older tokens stop verifying.
func (c *AuthUseCase) Refresh(ctx context.Context, claim *token.Claim) utils.Result {
	var result utils.Result

	if claim.Type != token.TypeRefresh {
		errObj := httpError.NewUnauthorized()
		errObj.Message = "a refresh token is required"
		result.Error = errObj
		return result
	}

	member, err := c.MemberRepository.FindByID(ctx, claim.Metadata.MemberID)
	if err != nil {
		errObj := httpError.NewUnauthorized()
		errObj.Message = "unauthenticated"
		result.Error = errObj
		c.Log.Warn("auth-usecase", "refresh for unknown member", "Refresh", utils.ConvertString(claim.Metadata))
		return result
	}

	if err := c.revokeTokens(ctx, member.ID); err != nil {
		c.Log.Error("auth-usecase", err.Error(), "Refresh", "revoke")
	}

	accessToken, refreshToken, err := token.Generate(c.Config, member.ID, member.SellerID, member.FullName)
	if err != nil {
		c.Log.Error("auth-usecase", err.Error(), "Refresh", member.SellerID)
		result.Error = httpError.NewInternalServerError()
		return result
	}

	result.Data = &model.RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	}
	return result
}

func (c *AuthUseCase) Logout(ctx context.Context, memberID uint64) utils.Result {
	var result utils.Result

	if err := c.revokeTokens(ctx, memberID); err != nil {
		c.Log.Error("auth-usecase", err.Error(), "Logout", "")
		result.Error = httpError.NewInternalServerError()
		return result
	}

	result.Data = map[string]interface{}{"message": "Successfully logged out"}
	return result
}

// CloseAccount soft-deletes the member and revokes every outstanding token.
// The row is retained: it may still be referenced as an upline and its
// ledger history stays auditable.
func (c *AuthUseCase) CloseAccount(ctx context.Context, memberID uint64) utils.Result {
	var result utils.Result

	if _, err := c.MemberRepository.FindByID(ctx, memberID); err != nil {
		errObj := httpError.NewNotFound()
		errObj.Message = "member not found"
		result.Error = errObj
		return result
	}

	if err := c.MemberRepository.SoftDelete(ctx, memberID); err != nil {
		c.Log.Error("auth-usecase", err.Error(), "CloseAccount", "")
		result.Error = httpError.NewInternalServerError()
		return result
	}

	if err := c.revokeTokens(ctx, memberID); err != nil {
		c.Log.Error("auth-usecase", err.Error(), "CloseAccount", "revoke")
	}

	result.Data = map[string]interface{}{"message": "Account closed"}
	return result
}

func (c *AuthUseCase) revokeTokens(ctx context.Context, memberID uint64) error {
	if c.Redis == nil {
		return nil
	}
	key := token.RevokedKey(memberID)
	ttl := 72 * time.Hour
	if hours := c.Config.GetInt("jwt.refresh_ttl_hours"); hours > 0 {
		ttl = time.Duration(hours) * time.Hour
	}
	return c.Redis.Set(ctx, key, time.Now().Unix(), ttl).Err()
}

func (c *AuthUseCase) geocodeShopLocation(ctx context.Context, location string) (float64, float64, error) {
	results, err := c.Geo.Geocode(ctx, &maps.GeocodingRequest{Address: location})
	if err != nil {
		return 0, 0, err
	}
	if len(results) == 0 {
		return 0, 0, errors.New("no geocoding results")
	}
	loc := results[0].Geometry.Location
	return loc.Lat, loc.Lng, nil
}
