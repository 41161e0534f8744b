package services

import (
	"context"
	"io"
	"log/slog"
	"sort"

	"github.com/soccerhub/league-manager/models"
	"github.com/soccerhub/league-manager/repositories"
)

// In-memory doubles for the repository interfaces. They return copies so a
// service mutating a fetched record cannot bypass Update.

type fakeTransactor struct {
	calls int
}

func (t *fakeTransactor) WithinTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	t.calls++
	return fn(nil)
}

type fakeMatchRepo struct {
	nextID  int
	matches map[int]models.Match
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{nextID: 1, matches: make(map[int]models.Match)}
}

func (r *fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	match.ID = r.nextID
	r.nextID++
	r.matches[match.ID] = *match
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Match, error) {
	match, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := match
	return &copied, nil
}

func (r *fakeMatchRepo) List(_ context.Context, _ repositories.SQLExecutor, filter repositories.MatchFilter) ([]*models.Match, error) {
	out := make([]*models.Match, 0)
	for id := 1; id < r.nextID; id++ {
		match, ok := r.matches[id]
		if !ok || !matchesFilter(match, filter) {
			continue
		}
		copied := match
		out = append(out, &copied)
	}
	// Mirror the SQL ordering: match_date ASC NULLS LAST, id ASC.
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].MatchDate, out[j].MatchDate
		switch {
		case di == nil && dj == nil:
			return out[i].ID < out[j].ID
		case di == nil:
			return false
		case dj == nil:
			return true
		case di.Equal(*dj):
			return out[i].ID < out[j].ID
		default:
			return di.Before(*dj)
		}
	})
	return out, nil
}

func matchesFilter(m models.Match, f repositories.MatchFilter) bool {
	if f.DivisionID != nil && m.DivisionID != *f.DivisionID {
		return false
	}
	if f.Status != nil && m.Status != *f.Status {
		return false
	}
	if f.TeamID != nil {
		if (m.HomeTeamID == nil || *m.HomeTeamID != *f.TeamID) &&
			(m.AwayTeamID == nil || *m.AwayTeamID != *f.TeamID) {
			return false
		}
	}
	if f.PlayoffRound != nil {
		if m.PlayoffRound == nil || *m.PlayoffRound != *f.PlayoffRound {
			return false
		}
	}
	if f.LeagueOnly && m.PlayoffRound != nil {
		return false
	}
	if f.PlayoffOnly && m.PlayoffRound == nil {
		return false
	}
	return true
}

func (r *fakeMatchRepo) Update(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	if _, ok := r.matches[match.ID]; !ok {
		return repositories.ErrMatchNotFound
	}
	r.matches[match.ID] = *match
	return nil
}

func (r *fakeMatchRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	if _, ok := r.matches[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	delete(r.matches, id)
	return nil
}

func (r *fakeMatchRepo) DeleteByTeam(_ context.Context, _ repositories.SQLExecutor, teamID int) (int, error) {
	deleted := 0
	for id, m := range r.matches {
		if (m.HomeTeamID != nil && *m.HomeTeamID == teamID) || (m.AwayTeamID != nil && *m.AwayTeamID == teamID) {
			delete(r.matches, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeMatchRepo) DeletePlayoffsByDivision(_ context.Context, _ repositories.SQLExecutor, divisionID int) (int, error) {
	deleted := 0
	for id, m := range r.matches {
		if m.DivisionID == divisionID && m.PlayoffRound != nil {
			delete(r.matches, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeMatchRepo) DeleteScheduledLeagueByDivision(_ context.Context, _ repositories.SQLExecutor, divisionID int) (int, error) {
	deleted := 0
	for id, m := range r.matches {
		if m.DivisionID == divisionID && m.PlayoffRound == nil && m.Status == models.MatchStatusScheduled {
			delete(r.matches, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeMatchRepo) CountByTeam(_ context.Context, _ repositories.SQLExecutor, teamID int) (int, error) {
	count := 0
	for _, m := range r.matches {
		if (m.HomeTeamID != nil && *m.HomeTeamID == teamID) || (m.AwayTeamID != nil && *m.AwayTeamID == teamID) {
			count++
		}
	}
	return count, nil
}

type fakeTeamRepo struct {
	nextID int
	teams  map[int]models.Team
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{nextID: 1, teams: make(map[int]models.Team)}
}

func (r *fakeTeamRepo) add(name string, divisionID int) int {
	id := r.nextID
	r.nextID++
	r.teams[id] = models.Team{ID: id, Name: name, DivisionID: divisionID}
	return id
}

func (r *fakeTeamRepo) Create(_ context.Context, _ repositories.SQLExecutor, team *models.Team) error {
	for _, existing := range r.teams {
		if existing.Name == team.Name && existing.DivisionID == team.DivisionID {
			return repositories.ErrTeamNameConflict
		}
	}
	team.ID = r.nextID
	r.nextID++
	r.teams[team.ID] = *team
	return nil
}

func (r *fakeTeamRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Team, error) {
	team, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	copied := team
	return &copied, nil
}

func (r *fakeTeamRepo) List(_ context.Context, _ repositories.SQLExecutor, divisionID *int) ([]*models.Team, error) {
	out := make([]*models.Team, 0)
	for id := 1; id < r.nextID; id++ {
		team, ok := r.teams[id]
		if !ok {
			continue
		}
		if divisionID != nil && team.DivisionID != *divisionID {
			continue
		}
		copied := team
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeTeamRepo) Update(_ context.Context, _ repositories.SQLExecutor, team *models.Team) error {
	if _, ok := r.teams[team.ID]; !ok {
		return repositories.ErrTeamNotFound
	}
	r.teams[team.ID] = *team
	return nil
}

func (r *fakeTeamRepo) UpdateLogoKey(_ context.Context, _ repositories.SQLExecutor, id int, logoKey *string) error {
	team, ok := r.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	team.LogoKey = logoKey
	r.teams[id] = team
	return nil
}

func (r *fakeTeamRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	if _, ok := r.teams[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	delete(r.teams, id)
	return nil
}

type fakePlayerRepo struct {
	nextID  int
	players map[int]models.Player
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{nextID: 1, players: make(map[int]models.Player)}
}

func (r *fakePlayerRepo) add(firstName, lastName string, teamID int, number *int) int {
	id := r.nextID
	r.nextID++
	r.players[id] = models.Player{ID: id, TeamID: teamID, FirstName: firstName, LastName: lastName, JerseyNumber: number}
	return id
}

func (r *fakePlayerRepo) numberTaken(teamID int, number *int, excludeID int) bool {
	if number == nil {
		return false
	}
	for _, p := range r.players {
		if p.ID != excludeID && p.TeamID == teamID && p.JerseyNumber != nil && *p.JerseyNumber == *number {
			return true
		}
	}
	return false
}

func (r *fakePlayerRepo) Create(_ context.Context, _ repositories.SQLExecutor, player *models.Player) error {
	if r.numberTaken(player.TeamID, player.JerseyNumber, 0) {
		return repositories.ErrPlayerNumberConflict
	}
	player.ID = r.nextID
	r.nextID++
	r.players[player.ID] = *player
	return nil
}

func (r *fakePlayerRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Player, error) {
	player, ok := r.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	copied := player
	return &copied, nil
}

func (r *fakePlayerRepo) List(_ context.Context, _ repositories.SQLExecutor, teamID *int) ([]*models.Player, error) {
	out := make([]*models.Player, 0)
	for id := 1; id < r.nextID; id++ {
		player, ok := r.players[id]
		if !ok {
			continue
		}
		if teamID != nil && player.TeamID != *teamID {
			continue
		}
		copied := player
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakePlayerRepo) Update(_ context.Context, _ repositories.SQLExecutor, player *models.Player) error {
	if _, ok := r.players[player.ID]; !ok {
		return repositories.ErrPlayerNotFound
	}
	if r.numberTaken(player.TeamID, player.JerseyNumber, player.ID) {
		return repositories.ErrPlayerNumberConflict
	}
	r.players[player.ID] = *player
	return nil
}

func (r *fakePlayerRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	if _, ok := r.players[id]; !ok {
		return repositories.ErrPlayerNotFound
	}
	delete(r.players, id)
	return nil
}

func (r *fakePlayerRepo) DeleteByTeam(_ context.Context, _ repositories.SQLExecutor, teamID int) (int, error) {
	deleted := 0
	for id, p := range r.players {
		if p.TeamID == teamID {
			delete(r.players, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakeDivisionRepo struct {
	nextID    int
	divisions map[int]models.Division
}

func newFakeDivisionRepo() *fakeDivisionRepo {
	return &fakeDivisionRepo{nextID: 1, divisions: make(map[int]models.Division)}
}

func (r *fakeDivisionRepo) add(name string, tournamentID int) int {
	id := r.nextID
	r.nextID++
	r.divisions[id] = models.Division{ID: id, Name: name, TournamentID: tournamentID}
	return id
}

func (r *fakeDivisionRepo) Create(_ context.Context, _ repositories.SQLExecutor, division *models.Division) error {
	division.ID = r.nextID
	r.nextID++
	r.divisions[division.ID] = *division
	return nil
}

func (r *fakeDivisionRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Division, error) {
	division, ok := r.divisions[id]
	if !ok {
		return nil, repositories.ErrDivisionNotFound
	}
	copied := division
	return &copied, nil
}

func (r *fakeDivisionRepo) List(_ context.Context, _ repositories.SQLExecutor, tournamentID *int) ([]*models.Division, error) {
	out := make([]*models.Division, 0)
	for id := 1; id < r.nextID; id++ {
		division, ok := r.divisions[id]
		if !ok {
			continue
		}
		if tournamentID != nil && division.TournamentID != *tournamentID {
			continue
		}
		copied := division
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeDivisionRepo) Update(_ context.Context, _ repositories.SQLExecutor, division *models.Division) error {
	if _, ok := r.divisions[division.ID]; !ok {
		return repositories.ErrDivisionNotFound
	}
	r.divisions[division.ID] = *division
	return nil
}

func (r *fakeDivisionRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	if _, ok := r.divisions[id]; !ok {
		return repositories.ErrDivisionNotFound
	}
	delete(r.divisions, id)
	return nil
}

type fakeVenueRepo struct {
	nextID int
	venues map[int]models.Venue
}

func newFakeVenueRepo() *fakeVenueRepo {
	return &fakeVenueRepo{nextID: 1, venues: make(map[int]models.Venue)}
}

func (r *fakeVenueRepo) Create(_ context.Context, _ repositories.SQLExecutor, venue *models.Venue) error {
	venue.ID = r.nextID
	r.nextID++
	r.venues[venue.ID] = *venue
	return nil
}

func (r *fakeVenueRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Venue, error) {
	venue, ok := r.venues[id]
	if !ok {
		return nil, repositories.ErrVenueNotFound
	}
	copied := venue
	return &copied, nil
}

func (r *fakeVenueRepo) List(_ context.Context, _ repositories.SQLExecutor) ([]*models.Venue, error) {
	out := make([]*models.Venue, 0)
	for id := 1; id < r.nextID; id++ {
		venue, ok := r.venues[id]
		if !ok {
			continue
		}
		copied := venue
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeVenueRepo) Update(_ context.Context, _ repositories.SQLExecutor, venue *models.Venue) error {
	if _, ok := r.venues[venue.ID]; !ok {
		return repositories.ErrVenueNotFound
	}
	r.venues[venue.ID] = *venue
	return nil
}

func (r *fakeVenueRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	if _, ok := r.venues[id]; !ok {
		return repositories.ErrVenueNotFound
	}
	delete(r.venues, id)
	return nil
}

type fakeUserRepo struct {
	nextID int
	users  map[int]models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[int]models.User)}
}

func (r *fakeUserRepo) add(username string, role models.UserRole) int {
	id := r.nextID
	r.nextID++
	r.users[id] = models.User{ID: id, Username: username, Email: username + "@example.com", Role: role}
	return id
}

func (r *fakeUserRepo) Create(_ context.Context, _ repositories.SQLExecutor, user *models.User) error {
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return repositories.ErrUserUsernameConflict
		}
		if existing.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := user
	return &copied, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, _ repositories.SQLExecutor, username string) (*models.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			copied := user
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var organizer = models.Principal{UserID: 1, Role: models.RoleOrganizer}
