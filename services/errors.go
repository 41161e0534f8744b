package services

import "errors"

// Shared errors used across services and mapped to HTTP by the handlers.
var (
	// Not found.
	ErrNotFound           = errors.New("requested resource not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrDivisionNotFound   = errors.New("division not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrVenueNotFound      = errors.New("venue not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrBracketNotFound    = errors.New("no playoff bracket exists for this division")

	// Validation and business rules.
	ErrValidationFailed          = errors.New("validation failed")
	ErrTeamNameRequired          = errors.New("team name is required")
	ErrSameTeamFixture           = errors.New("home team and away team cannot be the same")
	ErrTeamNotInDivision         = errors.New("team is not a member of the division")
	ErrMatchDateRequired         = errors.New("match date is required")
	ErrNegativeScore             = errors.New("scores must be non-negative integers")
	ErrInvalidMatchStatus        = errors.New("invalid match status provided")
	ErrInvalidStatusTransition   = errors.New("invalid match status transition")
	ErrCompleteViaResultOnly     = errors.New("a match is completed by recording a result, not by a status edit")
	ErrRefereeRoleRequired       = errors.New("assigned referee must have the referee role")
	ErrPlayoffDrawNotAllowed     = errors.New("playoff matches must not end level")
	ErrNotEnoughRankedTeams      = errors.New("division must have at least 4 ranked teams to generate playoffs")
	ErrNotEnoughTeamsForSchedule = errors.New("division must have at least 2 teams to generate a schedule")
	ErrTournamentInvalidDates    = errors.New("tournament end date must be on or after the start date")
	ErrPasswordTooShort          = errors.New("password is too short")
	ErrInvalidRole               = errors.New("invalid user role provided")
	ErrPlayerNameRequired        = errors.New("player first and last name are required")
	ErrInvalidJerseyNumber       = errors.New("jersey number must be between 1 and 99")

	// Conflicts.
	ErrBracketAlreadyExists = errors.New("a playoff bracket already exists for this division")
	ErrTeamHasMatches       = errors.New("team is referenced by existing matches; delete with cascade to remove them")
	ErrTeamNameConflict     = errors.New("team name is already in use within the division")
	ErrJerseyNumberConflict = errors.New("jersey number is already taken within the team")
	ErrUsernameConflict     = errors.New("username is already in use")
	ErrEmailConflict        = errors.New("email address is already in use")

	// Authentication.
	ErrInvalidCredentials = errors.New("invalid username or password")
)
