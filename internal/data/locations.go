package data

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/evanklingensmith/hungrymarmots/internal/docstore"
	"github.com/evanklingensmith/hungrymarmots/internal/models"
	"github.com/evanklingensmith/hungrymarmots/internal/syncer"
	"github.com/evanklingensmith/hungrymarmots/internal/validate"
)

// ErrLocationExists is returned when adding a location whose name is
// already taken.
var ErrLocationExists = errors.New("location already exists")

func locationsOf(snaps []docstore.Snapshot) ([]models.Location, error) {
	locations := make([]models.Location, 0, len(snaps))
	for _, snap := range snaps {
		var location models.Location
		if err := decodeSnapshot(snap, &location); err != nil {
			return nil, err
		}
		location.ID = docID(snap.Path)
		if location.Name == "" {
			location.Name = location.ID
		}
		locations = append(locations, location)
	}
	sort.Slice(locations, func(i, j int) bool {
		return strings.ToLower(locations[i].Name) < strings.ToLower(locations[j].Name)
	})
	return locations, nil
}

// AddLocation adds a store location, rejecting duplicate names.
func (s *Store) AddLocation(ctx context.Context, householdID, rawName string) error {
	name, err := validate.LocationName(rawName)
	if err != nil {
		return err
	}

	existing, err := s.ListLocations(ctx, householdID)
	if err != nil {
		return err
	}
	for _, location := range existing {
		if strings.EqualFold(location.Name, name) {
			return ErrLocationExists
		}
	}

	ref := s.locations(householdID).NewDoc()
	err = s.versionedWrite(ctx, ref, map[string]any{
		"name":      name,
		"createdBy": s.user.UID,
		"createdAt": nowStamp(),
	}, syncer.WriteOptions{
		BuildPersistedData: stampServerTime("createdAt"),
	})
	if err != nil {
		return err
	}

	return s.addActivity(ctx, householdID, models.ActivityLocation, fmt.Sprintf("Added location %s.", name))
}

// ListLocations returns the household's locations sorted by name.
func (s *Store) ListLocations(ctx context.Context, householdID string) ([]models.Location, error) {
	snaps, err := s.locations(householdID).List(ctx)
	if err != nil {
		return nil, err
	}
	return locationsOf(snaps)
}

// ListenLocations subscribes to the location list, sorted by name,
// until the returned disposer is called.
func (s *Store) ListenLocations(householdID string, callback func([]models.Location), onError docstore.ErrorHandler) func() {
	return s.locations(householdID).Subscribe(func(snaps []docstore.Snapshot) {
		for _, snap := range snaps {
			s.coord.ObserveSnapshot(snap, docstore.Metadata{})
		}
		locations, err := locationsOf(snaps)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		callback(locations)
	}, onError)
}
