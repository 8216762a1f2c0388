package cmd

import (
	"context"
	"errors"

	"github.com/inovacc/fleetroster/internal/fleet"
	"github.com/inovacc/fleetroster/internal/store"
	"github.com/spf13/cobra"
)

// withSession opens the store and the session of the current user for day,
// then runs fn. An empty day means today.
func withSession(cmd *cobra.Command, day string, fn func(ctx context.Context, s *fleet.Session) error) error {
	date, err := parseDay(day)
	if err != nil {
		return err
	}

	return withStore(cmd, func(ctx context.Context, st store.Store) error {
		s, err := fleet.OpenSession(ctx, st, currentUser(), date)
		if err != nil {
			return err
		}

		return fn(ctx, s)
	})
}

// editDay applies fn to the persisted day and saves it. Nothing is saved
// when fn fails.
func editDay(cmd *cobra.Command, day string, fn func(ctx context.Context, s *fleet.Session) error) error {
	return withSession(cmd, day, func(ctx context.Context, s *fleet.Session) error {
		if err := fn(ctx, s); err != nil {
			return err
		}

		return s.Save(ctx)
	})
}

// explain adds a hint to errors the user can act on.
func explain(err error) error {
	var station *fleet.StationUnavailableError
	if errors.As(err, &station) && station.Reason == fleet.StationUnknown {
		return errors.Join(err, errors.New("add it first with: fleetroster station add <name>"))
	}

	return err
}
