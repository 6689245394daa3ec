package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/vacation-rental/internal/applog"
	"github.com/iliyamo/vacation-rental/internal/model"
)

// Reconciler removes records whose parent no longer exists. Step A
// archives accommodations whose owner is not a host or admin; step B then archives
// reservations whose accommodation is gone and notifies their guests.
type Reconciler struct {
	accs     AccommodationStore
	res      ReservationStore
	hosts    HostDirectory
	accounts *AccommodationService
	bookings *ReservationService
	notifier Notifier
}

func NewReconciler(accounts *AccommodationService, bookings *ReservationService, hosts HostDirectory, notifier Notifier) *Reconciler {
	return &Reconciler{
		accs:     accounts.accs,
		res:      bookings.res,
		hosts:    hosts,
		accounts: accounts,
		bookings: bookings,
		notifier: notifier,
	}
}

// SweepReport counts what one sweep did.
type SweepReport struct {
	AccommodationsArchived int
	ReservationsArchived   int
	Notified               int
	Failures               int
}

// Sweep runs both steps once. Failures on single records are logged and
// counted; only failing to list a collection aborts the sweep.
func (r *Reconciler) Sweep(ctx context.Context) (SweepReport, error) {
	var rep SweepReport
	if err := r.orphanedAccommodations(ctx, &rep); err != nil {
		return rep, err
	}
	if err := r.orphanedReservations(ctx, &rep); err != nil {
		return rep, err
	}
	applog.Info("cleanup sweep finished",
		"accommodations", rep.AccommodationsArchived,
		"reservations", rep.ReservationsArchived,
		"notified", rep.Notified,
		"failures", rep.Failures)
	return rep, nil
}

func (r *Reconciler) orphanedAccommodations(ctx context.Context, rep *SweepReport) error {
	valid, err := ownerIDs(ctx, r.hosts)
	if err != nil {
		return err
	}
	refs, err := r.accs.ListOwnerRefs(ctx)
	if err != nil {
		return fmt.Errorf("list accommodation owners: %w", err)
	}
	for _, ref := range refs {
		if _, ok := valid[ref.UserID]; ok {
			continue
		}
		acc, err := r.accs.GetByID(ctx, ref.ID)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err == nil {
			err = r.accounts.archiveOne(ctx, acc)
		}
		if err != nil {
			rep.Failures++
			applog.Error("cleanup: archive accommodation failed", err, "id", ref.ID)
			continue
		}
		rep.AccommodationsArchived++
		applog.Info("cleanup: accommodation archived", "id", ref.ID, "owner", ref.UserID)
	}
	return nil
}

func (r *Reconciler) orphanedReservations(ctx context.Context, rep *SweepReport) error {
	ids, err := r.accs.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("list accommodation ids: %w", err)
	}
	valid := toSet(ids)
	all, err := r.res.List(ctx)
	if err != nil {
		return fmt.Errorf("list reservations: %w", err)
	}
	for _, res := range all {
		if _, ok := valid[res.AccommodationID]; ok {
			continue
		}
		err := r.bookings.archive.Upsert(ctx, &model.ArchivedReservation{Reservation: res, DeletedAt: r.bookings.now()})
		if err != nil {
			rep.Failures++
			applog.Error("cleanup: archive reservation failed", err, "id", res.ID)
			continue
		}
		if err := r.notifier.ReservationArchived(ctx, res); err != nil {
			applog.Warn("cleanup: guest notification failed", "id", res.ID, "err", err)
		} else {
			rep.Notified++
		}
		if err := r.res.Delete(ctx, res.ID); err != nil && !errors.Is(err, ErrNotFound) {
			rep.Failures++
			applog.Error("cleanup: delete reservation failed", err, "id", res.ID)
			continue
		}
		rep.ReservationsArchived++
	}
	return nil
}

// OwnerRoles are the roles whose users may own a listing.
var OwnerRoles = []string{model.RoleHost, model.RoleAdmin}

// ownerIDs is the set of users that may own a listing.
func ownerIDs(ctx context.Context, dir HostDirectory) (map[string]struct{}, error) {
	set := make(map[string]struct{})
	for _, role := range OwnerRoles {
		ids, err := dir.ListIDsByRole(ctx, role)
		if err != nil {
			return nil, fmt.Errorf("list %s users: %w", strings.ToLower(role), err)
		}
		for _, id := range ids {
			set[id] = struct{}{}
		}
	}
	return set, nil
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
