// Package authz is the single authorization gate consulted before every
// mutating operation. It maps (role, action, resource) to allow or deny
// over a closed set of actions, so the policy is testable in isolation
// from transport and storage.
package authz

import (
	"errors"
	"fmt"

	"github.com/soccerhub/league-manager/models"
)

type Action string

const (
	ActionTeamCreate        Action = "team:create"
	ActionTeamUpdate        Action = "team:update"
	ActionTeamDelete        Action = "team:delete"
	ActionPlayerCreate      Action = "player:create"
	ActionPlayerUpdate      Action = "player:update"
	ActionPlayerDelete      Action = "player:delete"
	ActionDivisionCreate    Action = "division:create"
	ActionDivisionUpdate    Action = "division:update"
	ActionDivisionDelete    Action = "division:delete"
	ActionTournamentCreate  Action = "tournament:create"
	ActionTournamentUpdate  Action = "tournament:update"
	ActionTournamentDelete  Action = "tournament:delete"
	ActionVenueCreate       Action = "venue:create"
	ActionVenueUpdate       Action = "venue:update"
	ActionVenueDelete       Action = "venue:delete"
	ActionMatchCreate       Action = "match:create"
	ActionMatchUpdate       Action = "match:update"
	ActionMatchDelete       Action = "match:delete"
	ActionMatchRecordResult Action = "match:record_result"
	ActionScheduleGenerate  Action = "schedule:generate"
	ActionPlayoffGenerate   Action = "playoff:generate"
	ActionPlayoffClear      Action = "playoff:clear"
)

// ErrForbidden is returned, wrapped with detail, for every denial.
var ErrForbidden = errors.New("operation not allowed for the current actor")

// Resource carries the ownership context an action is checked against.
// Only RecordResult inspects it today.
type Resource struct {
	Match *models.Match
}

// Authorize decides whether actor may perform action on the resource. A
// nil return means allowed; any state change must happen strictly after
// this call so a denial leaves the store untouched.
func Authorize(actor models.Principal, action Action, res Resource) error {
	switch actor.Role {
	case models.RoleOrganizer:
		return nil
	case models.RoleReferee:
		if action != ActionMatchRecordResult {
			return fmt.Errorf("%w: referees may only record results", ErrForbidden)
		}
		return authorizeRefereeResult(actor, res.Match)
	default:
		return fmt.Errorf("%w: unknown role %q", ErrForbidden, actor.Role)
	}
}

// A referee may close out their own assigned match exactly once: the entry
// is allowed only while the match is not yet completed. Corrections of a
// completed result require the organizer role. This is an authorization
// boundary, not a lifecycle rule; COMPLETED -> COMPLETED re-entry itself
// stays legal for organizers.
func authorizeRefereeResult(actor models.Principal, match *models.Match) error {
	if match == nil {
		return fmt.Errorf("%w: no match in scope", ErrForbidden)
	}
	if match.RefereeID == nil || *match.RefereeID != actor.UserID {
		return fmt.Errorf("%w: match %d is not assigned to referee %d", ErrForbidden, match.ID, actor.UserID)
	}
	switch match.Status {
	case models.MatchStatusScheduled, models.MatchStatusInProgress:
		return nil
	default:
		return fmt.Errorf("%w: referee cannot record a result for a %s match", ErrForbidden, match.Status)
	}
}
