package data

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/evanklingensmith/hungrymarmots/internal/docstore"
	"github.com/evanklingensmith/hungrymarmots/internal/models"
	"github.com/evanklingensmith/hungrymarmots/internal/syncer"
	"github.com/evanklingensmith/hungrymarmots/internal/validate"
)

// ErrHouseholdNotFound is returned when a household id does not exist.
var ErrHouseholdNotFound = errors.New("household not found")

// ErrInviteCodeMismatch is returned when a join attempt presents the
// wrong invite code.
var ErrInviteCodeMismatch = errors.New("invite code does not match")

const inviteCodeLength = 6

func (s *Store) memberPayload(role models.Role, joinCode string) map[string]any {
	now := nowStamp()
	return map[string]any{
		"uid":         s.user.UID,
		"email":       s.user.Email,
		"displayName": s.user.Name(),
		"photoUrl":    s.user.PhotoURL,
		"role":        string(role),
		"joinCode":    joinCode,
		"joinedAt":    now,
		"updatedAt":   now,
	}
}

// CreateHousehold creates a household owned by the acting user, with a
// fresh invite code and the owner's member document, and returns its id.
func (s *Store) CreateHousehold(ctx context.Context, rawName string) (string, error) {
	name, err := validate.HouseholdName(rawName)
	if err != nil {
		return "", err
	}
	inviteCode, err := GenerateInviteCode(inviteCodeLength)
	if err != nil {
		return "", err
	}

	householdRef := s.households().NewDoc()
	householdID := docID(householdRef.Path())
	now := nowStamp()

	err = s.versionedWrite(ctx, householdRef, map[string]any{
		"name":       name,
		"ownerUid":   s.user.UID,
		"memberUids": []any{s.user.UID},
		"inviteCode": inviteCode,
		"createdAt":  now,
		"updatedAt":  now,
	}, syncer.WriteOptions{
		BuildPersistedData: stampServerTime("createdAt", "updatedAt"),
	})
	if err != nil {
		return "", err
	}

	memberRef := s.members(householdID).Doc(s.user.UID)
	err = s.versionedWrite(ctx, memberRef, s.memberPayload(models.RoleOwner, inviteCode), syncer.WriteOptions{
		BuildPersistedData: stampServerTime("joinedAt", "updatedAt"),
	})
	if err != nil {
		return "", err
	}

	if err := s.addActivity(ctx, householdID, models.ActivityHousehold, fmt.Sprintf("Created household %q.", name)); err != nil {
		return "", err
	}
	return householdID, nil
}

// JoinHousehold adds the acting user to an existing household after
// checking its invite code. The membership update is a versioned write,
// so a concurrent member change surfaces as a conflict rather than a
// lost update.
func (s *Store) JoinHousehold(ctx context.Context, rawHouseholdID, rawInviteCode string) error {
	householdID := strings.TrimSpace(rawHouseholdID)
	if householdID == "" {
		return errors.New("household id is required")
	}
	inviteCode, err := validate.InviteCode(rawInviteCode)
	if err != nil {
		return err
	}

	ref := s.householdRef(householdID)
	snap, err := ref.Get(ctx)
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrHouseholdNotFound
	}
	if err != nil {
		return err
	}

	var household models.Household
	if err := decodeSnapshot(snap, &household); err != nil {
		return err
	}
	if !strings.EqualFold(household.InviteCode, inviteCode) {
		return ErrInviteCodeMismatch
	}

	memberRef := s.members(householdID).Doc(s.user.UID)
	err = s.versionedWrite(ctx, memberRef, s.memberPayload(models.RoleMember, inviteCode), syncer.WriteOptions{
		Merge:              true,
		BuildPersistedData: stampServerTime("joinedAt", "updatedAt"),
	})
	if err != nil {
		return err
	}

	if !slices.Contains(household.MemberUIDs, s.user.UID) {
		memberUIDs := make([]any, 0, len(household.MemberUIDs)+1)
		for _, uid := range household.MemberUIDs {
			memberUIDs = append(memberUIDs, uid)
		}
		memberUIDs = append(memberUIDs, s.user.UID)

		err = s.versionedWrite(ctx, ref, map[string]any{
			"memberUids": memberUIDs,
			"updatedAt":  nowStamp(),
		}, syncer.WriteOptions{
			Merge:              true,
			BuildPersistedData: stampServerTime("updatedAt"),
		})
		if err != nil {
			return err
		}
	}

	return s.addActivity(ctx, householdID, models.ActivityMemberLog, "Joined the household.")
}

// ListHouseholds returns the households the acting user belongs to,
// sorted by name.
func (s *Store) ListHouseholds(ctx context.Context) ([]models.Household, error) {
	snaps, err := s.households().List(ctx)
	if err != nil {
		return nil, err
	}

	var households []models.Household
	for _, snap := range snaps {
		var household models.Household
		if err := decodeSnapshot(snap, &household); err != nil {
			return nil, err
		}
		household.ID = docID(snap.Path)
		if slices.Contains(household.MemberUIDs, s.user.UID) {
			households = append(households, household)
		}
	}
	sort.Slice(households, func(i, j int) bool {
		return strings.ToLower(households[i].Name) < strings.ToLower(households[j].Name)
	})
	return households, nil
}

// GetHousehold returns one household by id.
func (s *Store) GetHousehold(ctx context.Context, householdID string) (models.Household, error) {
	snap, err := s.householdRef(householdID).Get(ctx)
	if errors.Is(err, docstore.ErrNotFound) {
		return models.Household{}, ErrHouseholdNotFound
	}
	if err != nil {
		return models.Household{}, err
	}
	var household models.Household
	if err := decodeSnapshot(snap, &household); err != nil {
		return models.Household{}, err
	}
	household.ID = householdID
	return household, nil
}

func sortMembers(members []models.Member) {
	sort.Slice(members, func(i, j int) bool {
		if members[i].Role != members[j].Role {
			return members[i].Role == models.RoleOwner
		}
		return strings.ToLower(members[i].DisplayName) < strings.ToLower(members[j].DisplayName)
	})
}

// ListMembers returns household members, owner first then by name.
func (s *Store) ListMembers(ctx context.Context, householdID string) ([]models.Member, error) {
	snaps, err := s.members(householdID).List(ctx)
	if err != nil {
		return nil, err
	}
	members := make([]models.Member, 0, len(snaps))
	for _, snap := range snaps {
		var member models.Member
		if err := decodeSnapshot(snap, &member); err != nil {
			return nil, err
		}
		member.UID = docID(snap.Path)
		members = append(members, member)
	}
	sortMembers(members)
	return members, nil
}

// ListenMembers subscribes to the member list, owner first then by
// name, until the returned disposer is called.
func (s *Store) ListenMembers(householdID string, callback func([]models.Member), onError docstore.ErrorHandler) func() {
	return s.members(householdID).Subscribe(func(snaps []docstore.Snapshot) {
		members := make([]models.Member, 0, len(snaps))
		for _, snap := range snaps {
			s.coord.ObserveSnapshot(snap, docstore.Metadata{})
			var member models.Member
			if err := decodeSnapshot(snap, &member); err != nil {
				if onError != nil {
					onError(err)
				}
				return
			}
			member.UID = docID(snap.Path)
			members = append(members, member)
		}
		sortMembers(members)
		callback(members)
	}, onError)
}
