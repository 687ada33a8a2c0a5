package errcodes

import "git.appkode.ru/pub/go/failure"

const (
	InternalServerError failure.ErrorCode = "InternalServerError"
	TimeoutExceeded     failure.ErrorCode = "TimeoutExceeded"
	Forbidden           failure.ErrorCode = "Forbidden"
	ValidationError     failure.ErrorCode = "ValidationError"
	NotFound            failure.ErrorCode = "NotFound"
	NotAuthenticated    failure.ErrorCode = "NotAuthenticated"
	AccessTokenExpired  failure.ErrorCode = "AccessTokenExpired"
	AccessTokenInvalid  failure.ErrorCode = "AccessTokenInvalid"

	// Mutation / cache layer.
	PersistenceFailed  failure.ErrorCode = "PersistenceFailed"
	NetworkUnavailable failure.ErrorCode = "NetworkUnavailable"

	// Deals.
	DealNotFound    failure.ErrorCode = "DealNotFound"
	InvalidDealID   failure.ErrorCode = "InvalidDealID"
	InvalidVoteKind failure.ErrorCode = "InvalidVoteKind"
	InvalidDeal     failure.ErrorCode = "InvalidDeal"

	// Restaurants and discovery.
	RestaurantNotFound failure.ErrorCode = "RestaurantNotFound"
	InvalidCoordinates failure.ErrorCode = "InvalidCoordinates"
	InvalidPaging      failure.ErrorCode = "InvalidPaging"

	// Profiles and moderation.
	ProfileNotFound    failure.ErrorCode = "ProfileNotFound"
	InvalidProfileID   failure.ErrorCode = "InvalidProfileID"
	InvalidReport      failure.ErrorCode = "InvalidReport"
	AlreadyReported    failure.ErrorCode = "AlreadyReported"
	UserAlreadyBlocked failure.ErrorCode = "UserAlreadyBlocked"
	InvalidPhotoURL    failure.ErrorCode = "InvalidPhotoURL"
)
