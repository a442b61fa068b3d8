// Package revert is the closed catalogue of reasons for which the hub rejects
// a state transition. Each value has a stable wire name that callers match
// on verbatim, so names must never change.
package revert

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slices"
)

// Error is a rejection reason. Two errors are the same reason if they share
// the code, regardless of any attached detail.
type Error struct {
	code   uint16
	name   string
	detail string
}

// Error returns the wire name, followed by the detail if there is one.
func (e *Error) Error() string {
	if e.detail == "" {
		return e.name
	}
	return e.name + ": " + e.detail
}

// Name returns the stable wire name.
func (e *Error) Name() string { return e.name }

// Code returns the stable numeric code.
func (e *Error) Code() uint16 { return e.code }

// Detail returns the diagnostic detail, if any.
func (e *Error) Detail() string { return e.detail }

// Is makes errors.Is match on the reason and ignore the detail.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.code == e.code
}

// WithDetail returns a copy of e carrying a diagnostic detail. The copy is
// still the same reason for errors.Is.
func (e *Error) WithDetail(format string, args ...any) *Error {
	return &Error{code: e.code, name: e.name, detail: fmt.Sprintf(format, args...)}
}

var catalogue = map[uint16]*Error{}

func register(code uint16, name string) *Error {
	if _, ok := catalogue[code]; ok {
		panic(fmt.Sprintf("duplicate revert code %d", code))
	}
	e := &Error{code: code, name: name}
	catalogue[code] = e
	return e
}

// Initialization
var (
	ErrCannotInitImplementation = register(1, "CannotInitImplementation()")
	ErrInitialized              = register(2, "Initialized()")
)

// Signatures
var (
	ErrSignatureExpired = register(10, "SignatureExpired()")
	ErrZeroSpender      = register(11, "ZeroSpender()")
	ErrSignatureInvalid = register(12, "SignatureInvalid()")
)

// Roles and pausing
var (
	ErrNotOwnerOrApproved                = register(20, "NotOwnerOrApproved()")
	ErrNotHub                            = register(21, "NotHub()")
	ErrTokenDoesNotExist                 = register(22, "TokenDoesNotExist()")
	ErrNotGovernance                     = register(23, "NotGovernance()")
	ErrNotGovernanceOrEmergencyAdmin     = register(24, "NotGovernanceOrEmergencyAdmin()")
	ErrEmergencyAdminCanOnlyPauseFurther = register(25, "EmergencyAdminCanOnlyPauseFurther()")
	ErrPaused                            = register(26, "Paused()")
	ErrPublishingPaused                  = register(27, "PublishingPaused()")
)

// Whitelists
var (
	ErrCollectModuleNotWhitelisted   = register(30, "CollectModuleNotWhitelisted()")
	ErrFollowModuleNotWhitelisted    = register(31, "FollowModuleNotWhitelisted()")
	ErrReferenceModuleNotWhitelisted = register(32, "ReferenceModuleNotWhitelisted()")
	ErrProfileCreatorNotWhitelisted  = register(33, "ProfileCreatorNotWhitelisted()")
)

// Profiles and publications
var (
	ErrNotProfileOwner                 = register(40, "NotProfileOwner()")
	ErrNotProfileOwnerOrValid          = register(41, "NotProfileOwnerOrValid()")
	ErrPublicationDoesNotExist         = register(42, "PublicationDoesNotExist()")
	ErrHandleTaken                     = register(43, "HandleTaken()")
	ErrHandleLengthInvalid             = register(44, "HandleLengthInvalid()")
	ErrProfileImageURILengthInvalid    = register(45, "ProfileImageURILengthInvalid()")
	ErrHandleContainsInvalidCharacters = register(46, "HandleContainsInvalidCharacters()")
	ErrHandleFirstCharInvalid          = register(47, "HandleFirstCharInvalid()")
	ErrCannotCommentOnSelf             = register(48, "CannotCommentOnSelf")
	ErrNotDispatcher                   = register(49, "NotDispatcher()")
	ErrArrayMismatch                   = register(50, "ArrayMismatch()")
)

// NFTs and modules
var (
	ErrCallerNotFollowNFT  = register(60, "CallerNotFollowNFT()")
	ErrCallerNotCollectNFT = register(61, "CallerNotCollectNFT()")
	ErrBlockNumberInvalid  = register(62, "BlockNumberInvalid()")
	ErrInitParamsInvalid   = register(63, "InitParamsInvalid()")
	ErrCollectExpired      = register(64, "CollectExpired()")
	ErrCollectNotAllowed   = register(65, "CollectNotAllowed()")
	ErrMintLimitExceeded   = register(66, "MintLimitExceeded()")
	ErrFollowInvalid       = register(67, "FollowInvalid()")
	ErrModuleDataMismatch  = register(68, "ModuleDataMismatch()")
	ErrFollowNotApproved   = register(69, "FollowNotApproved()")
)

// ERC721Time base token
var (
	ErrERC721NotOwn                   = register(70, "ERC721Time_TransferOfTokenThatIsNotOwn()")
	ErrERC721CallerNotOwnerOrApproved = register(71, "ERC721Time_TransferCallerNotOwnerOrApproved()")
	ErrERC721OwnerQueryForNonexistent = register(72, "ERC721Time_OwnerQueryForNonexistantToken()")
)

// External ERC-20 payment token. These are raised by the currency
// collaborator, never by the hub itself.
var (
	ErrERC20TransferExceedsAllowance = register(80, "ERC20: transfer amount exceeds allowance")
	ErrERC20InsufficientAllowance    = register(81, "ERC20: insufficient allowance")
)

// As extracts the rejection reason from err, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Name returns the wire name of the reason carried by err, or the empty
// string if err is not a rejection.
func Name(err error) string {
	if e, ok := As(err); ok {
		return e.name
	}
	return ""
}

// ByName looks a reason up by its wire name.
func ByName(name string) (*Error, bool) {
	for _, e := range catalogue {
		if e.name == name {
			return e, true
		}
	}
	return nil, false
}

// ByCode looks a reason up by its numeric code.
func ByCode(code uint16) (*Error, bool) {
	e, ok := catalogue[code]
	return e, ok
}

// All returns every reason ordered by code.
func All() []*Error {
	all := make([]*Error, 0, len(catalogue))
	for _, e := range catalogue {
		all = append(all, e)
	}
	slices.SortFunc(all, func(a, b *Error) bool { return a.code < b.code })
	return all
}
