package memstore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Gopher0727/TripMate/internal/model"
	"github.com/Gopher0727/TripMate/internal/repository"
)

func copyTrip(t *model.Trip) *model.Trip {
	c := *t
	c.Themes = slices.Clone(t.Themes)
	if t.Budget != nil {
		b := *t.Budget
		c.Budget = &b
	}
	return &c
}

func copyOf[T any](v *T) *T {
	c := *v
	return &c
}

func stamp(now time.Time, created, updated *time.Time) {
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

type tripRepo struct{ v *view }

func (r tripRepo) Create(ctx context.Context, trip *model.Trip) error {
	return r.v.write(ctx, func(st *state) error {
		if _, ok := st.trips[trip.ID]; ok {
			return fmt.Errorf("%w: trip %d", repository.ErrDuplicate, trip.ID)
		}
		stamp(r.v.now(), &trip.CreatedAt, &trip.UpdatedAt)
		st.trips[trip.ID] = copyTrip(trip)
		return nil
	})
}

func (r tripRepo) FindByID(ctx context.Context, id int64, _ repository.LockMode) (*model.Trip, error) {
	var out *model.Trip
	err := r.v.read(ctx, func(st *state) error {
		t, ok := st.trips[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = copyTrip(t)
		return nil
	})
	return out, err
}

func (r tripRepo) List(ctx context.Context, limit, offset int) ([]*model.Trip, int64, error) {
	var (
		out   []*model.Trip
		total int64
	)
	err := r.v.read(ctx, func(st *state) error {
		all := make([]*model.Trip, 0, len(st.trips))
		for _, t := range st.trips {
			all = append(all, copyTrip(t))
		}
		total = int64(len(all))
		out = page(sortTrips(all), limit, offset)
		return nil
	})
	return out, total, err
}

func (r tripRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*model.Trip, error) {
	var out []*model.Trip
	err := r.v.read(ctx, func(st *state) error {
		for _, t := range st.trips {
			if t.OwnerID == ownerID {
				out = append(out, copyTrip(t))
			}
		}
		out = sortTrips(out)
		return nil
	})
	return out, err
}

func (r tripRepo) Update(ctx context.Context, trip *model.Trip) error {
	return r.v.write(ctx, func(st *state) error {
		if _, ok := st.trips[trip.ID]; !ok {
			return repository.ErrNotFound
		}
		trip.UpdatedAt = r.v.now()
		st.trips[trip.ID] = copyTrip(trip)
		return nil
	})
}

func (r tripRepo) Delete(ctx context.Context, id int64) error {
	return r.v.write(ctx, func(st *state) error {
		delete(st.trips, id)
		return nil
	})
}

func sortTrips(ts []*model.Trip) []*model.Trip {
	return newestFirst(ts,
		func(t *model.Trip) time.Time { return t.CreatedAt },
		func(t *model.Trip) int64 { return t.ID })
}

type scheduleRepo struct{ v *view }

func copySchedule(s *model.TripSchedule) *model.TripSchedule {
	c := *s
	if s.Lat != nil {
		lat := *s.Lat
		c.Lat = &lat
	}
	if s.Lng != nil {
		lng := *s.Lng
		c.Lng = &lng
	}
	return &c
}

func (r scheduleRepo) ListByTrip(ctx context.Context, tripID int64) ([]*model.TripSchedule, error) {
	var out []*model.TripSchedule
	err := r.v.read(ctx, func(st *state) error {
		for _, s := range st.schedules {
			if s.TripID == tripID {
				out = append(out, copySchedule(s))
			}
		}
		slices.SortFunc(out, func(a, b *model.TripSchedule) int {
			if a.DayNumber != b.DayNumber {
				return a.DayNumber - b.DayNumber
			}
			if c := strings.Compare(a.Time, b.Time); c != 0 {
				return c
			}
			switch {
			case a.ID < b.ID:
				return -1
			case a.ID > b.ID:
				return 1
			}
			return 0
		})
		return nil
	})
	return out, err
}

func (r scheduleRepo) CreateBatch(ctx context.Context, schedules []*model.TripSchedule) error {
	return r.v.write(ctx, func(st *state) error {
		for _, s := range schedules {
			if _, ok := st.schedules[s.ID]; ok {
				return fmt.Errorf("%w: trip schedule %d", repository.ErrDuplicate, s.ID)
			}
		}
		now := r.v.now()
		for _, s := range schedules {
			if s.CreatedAt.IsZero() {
				s.CreatedAt = now
			}
			st.schedules[s.ID] = copySchedule(s)
		}
		return nil
	})
}

func (r scheduleRepo) DeleteByTrip(ctx context.Context, tripID int64) error {
	return r.v.write(ctx, func(st *state) error {
		for id, s := range st.schedules {
			if s.TripID == tripID {
				delete(st.schedules, id)
			}
		}
		return nil
	})
}

type companionRepo struct{ v *view }

func (r companionRepo) Create(ctx context.Context, companion *model.Companion) error {
	return r.v.write(ctx, func(st *state) error {
		if _, ok := st.companions[companion.ID]; ok {
			return fmt.Errorf("%w: companion %d", repository.ErrDuplicate, companion.ID)
		}
		stamp(r.v.now(), &companion.CreatedAt, &companion.UpdatedAt)
		st.companions[companion.ID] = copyOf(companion)
		return nil
	})
}

func (r companionRepo) FindByID(ctx context.Context, id int64, _ repository.LockMode) (*model.Companion, error) {
	var out *model.Companion
	err := r.v.read(ctx, func(st *state) error {
		c, ok := st.companions[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = copyOf(c)
		return nil
	})
	return out, err
}

func (r companionRepo) List(ctx context.Context, filter repository.CompanionFilter, limit, offset int) ([]*model.Companion, int64, error) {
	var (
		out   []*model.Companion
		total int64
	)
	err := r.v.read(ctx, func(st *state) error {
		var matched []*model.Companion
		for _, c := range st.companions {
			if matches(st, c, filter) {
				matched = append(matched, copyOf(c))
			}
		}
		total = int64(len(matched))
		out = page(sortCompanions(matched), limit, offset)
		return nil
	})
	return out, total, err
}

func matches(st *state, c *model.Companion, f repository.CompanionFilter) bool {
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.TripID != 0 && c.TripID != f.TripID {
		return false
	}
	if f.OwnerID != 0 && c.OwnerID != f.OwnerID {
		return false
	}
	if f.Destination != "" {
		trip, ok := st.trips[c.TripID]
		if !ok || !strings.Contains(strings.ToLower(trip.Destination), strings.ToLower(f.Destination)) {
			return false
		}
	}
	return true
}

func (r companionRepo) ListByTrip(ctx context.Context, tripID int64, _ repository.LockMode) ([]*model.Companion, error) {
	var out []*model.Companion
	err := r.v.read(ctx, func(st *state) error {
		for _, c := range st.companions {
			if c.TripID == tripID {
				out = append(out, copyOf(c))
			}
		}
		out = sortCompanions(out)
		return nil
	})
	return out, err
}

func (r companionRepo) ExistsByTripAndStatus(ctx context.Context, tripID int64, status model.CompanionStatus) (bool, error) {
	var found bool
	err := r.v.read(ctx, func(st *state) error {
		for _, c := range st.companions {
			if c.TripID == tripID && c.Status == status {
				found = true
				break
			}
		}
		return nil
	})
	return found, err
}

func (r companionRepo) Update(ctx context.Context, companion *model.Companion) error {
	return r.v.write(ctx, func(st *state) error {
		if _, ok := st.companions[companion.ID]; !ok {
			return repository.ErrNotFound
		}
		companion.UpdatedAt = r.v.now()
		st.companions[companion.ID] = copyOf(companion)
		return nil
	})
}

func (r companionRepo) Delete(ctx context.Context, id int64) error {
	return r.v.write(ctx, func(st *state) error {
		delete(st.companions, id)
		return nil
	})
}

func sortCompanions(cs []*model.Companion) []*model.Companion {
	return newestFirst(cs,
		func(c *model.Companion) time.Time { return c.CreatedAt },
		func(c *model.Companion) int64 { return c.ID })
}

type applicationRepo struct{ v *view }

func (r applicationRepo) Create(ctx context.Context, app *model.CompanionApplication) error {
	return r.v.write(ctx, func(st *state) error {
		if _, ok := st.applications[app.ID]; ok {
			return fmt.Errorf("%w: application %d", repository.ErrDuplicate, app.ID)
		}
		for _, existing := range st.applications {
			if existing.CompanionID == app.CompanionID && existing.UserID == app.UserID {
				return fmt.Errorf("%w: application for companion %d user %d",
					repository.ErrDuplicate, app.CompanionID, app.UserID)
			}
		}
		stamp(r.v.now(), &app.CreatedAt, &app.UpdatedAt)
		st.applications[app.ID] = copyOf(app)
		return nil
	})
}

func (r applicationRepo) FindByCompanionAndUser(ctx context.Context, companionID, userID int64) (*model.CompanionApplication, error) {
	var out *model.CompanionApplication
	err := r.v.read(ctx, func(st *state) error {
		for _, a := range st.applications {
			if a.CompanionID == companionID && a.UserID == userID {
				out = copyOf(a)
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r applicationRepo) Exists(ctx context.Context, companionID, userID int64) (bool, error) {
	_, err := r.FindByCompanionAndUser(ctx, companionID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r applicationRepo) ListByCompanion(ctx context.Context, companionID int64) ([]*model.CompanionApplication, error) {
	return r.collect(ctx, func(a *model.CompanionApplication) bool { return a.CompanionID == companionID })
}

func (r applicationRepo) ListByUser(ctx context.Context, userID int64) ([]*model.CompanionApplication, error) {
	return r.collect(ctx, func(a *model.CompanionApplication) bool { return a.UserID == userID })
}

func (r applicationRepo) collect(ctx context.Context, keep func(*model.CompanionApplication) bool) ([]*model.CompanionApplication, error) {
	var out []*model.CompanionApplication
	err := r.v.read(ctx, func(st *state) error {
		for _, a := range st.applications {
			if keep(a) {
				out = append(out, copyOf(a))
			}
		}
		out = newestFirst(out,
			func(a *model.CompanionApplication) time.Time { return a.CreatedAt },
			func(a *model.CompanionApplication) int64 { return a.ID })
		return nil
	})
	return out, err
}

func (r applicationRepo) UpdateStatus(ctx context.Context, id int64, status model.ApplicationStatus) error {
	return r.v.write(ctx, func(st *state) error {
		a, ok := st.applications[id]
		if !ok {
			return repository.ErrNotFound
		}
		updated := copyOf(a)
		updated.Status = status
		updated.UpdatedAt = r.v.now()
		st.applications[id] = updated
		return nil
	})
}

func (r applicationRepo) DeleteByCompanion(ctx context.Context, companionID int64) error {
	return r.v.write(ctx, func(st *state) error {
		for id, a := range st.applications {
			if a.CompanionID == companionID {
				delete(st.applications, id)
			}
		}
		return nil
	})
}

type chatRoomRepo struct{ v *view }

func (r chatRoomRepo) Create(ctx context.Context, room *model.ChatRoom) error {
	return r.v.write(ctx, func(st *state) error {
		if _, ok := st.rooms[room.ID]; ok {
			return fmt.Errorf("%w: chat room %d", repository.ErrDuplicate, room.ID)
		}
		for _, existing := range st.rooms {
			if existing.CompanionID == room.CompanionID {
				return fmt.Errorf("%w: chat room for companion %d", repository.ErrDuplicate, room.CompanionID)
			}
		}
		if room.CreatedAt.IsZero() {
			room.CreatedAt = r.v.now()
		}
		st.rooms[room.ID] = copyOf(room)
		return nil
	})
}

func (r chatRoomRepo) FindByID(ctx context.Context, id int64) (*model.ChatRoom, error) {
	var out *model.ChatRoom
	err := r.v.read(ctx, func(st *state) error {
		room, ok := st.rooms[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = copyOf(room)
		return nil
	})
	return out, err
}

func (r chatRoomRepo) FindByCompanion(ctx context.Context, companionID int64) (*model.ChatRoom, error) {
	var out *model.ChatRoom
	err := r.v.read(ctx, func(st *state) error {
		for _, room := range st.rooms {
			if room.CompanionID == companionID {
				out = copyOf(room)
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r chatRoomRepo) ListForUser(ctx context.Context, userID int64) ([]*model.ChatRoom, error) {
	var out []*model.ChatRoom
	err := r.v.read(ctx, func(st *state) error {
		for _, room := range st.rooms {
			c, ok := st.companions[room.CompanionID]
			if !ok {
				continue
			}
			if c.OwnerID == userID || approvedMember(st, c.ID, userID) {
				out = append(out, copyOf(room))
			}
		}
		out = newestFirst(out,
			func(r *model.ChatRoom) time.Time { return r.CreatedAt },
			func(r *model.ChatRoom) int64 { return r.ID })
		return nil
	})
	return out, err
}

func approvedMember(st *state, companionID, userID int64) bool {
	for _, a := range st.applications {
		if a.CompanionID == companionID && a.UserID == userID && a.Status == model.ApplicationApproved {
			return true
		}
	}
	return false
}

func (r chatRoomRepo) DeleteByCompanion(ctx context.Context, companionID int64) error {
	return r.v.write(ctx, func(st *state) error {
		for id, room := range st.rooms {
			if room.CompanionID == companionID {
				delete(st.rooms, id)
			}
		}
		return nil
	})
}
