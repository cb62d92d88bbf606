package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	availabilityRepo "courtside/database/repository/availability"
	"courtside/models"
)

// matchTolerance is the search window around a slot's derived start and end.
const matchTolerance = time.Second

// ResolveSlots maps selected slots to open availability windows and folds them into
// one BookingIntent per location, in first-seen location order. Cost and count are
// left for the caller.
func (s *DefaultBookingService) ResolveSlots(ctx context.Context, slots []models.SelectedSlot, targetDate string) ([]models.BookingIntent, error) {
	if len(slots) == 0 {
		return nil, newError(ErrSlotUnavailable, nil, "No slots selected.")
	}

	var order []string
	groups := map[string][]models.AvailabilityWindow{}
	for _, slot := range slots {
		windows, err := s.resolveSlot(ctx, slot, targetDate)
		if err != nil {
			return nil, err
		}
		loc := windows[0].LocationID
		if _, seen := groups[loc]; !seen {
			order = append(order, loc)
		}
		groups[loc] = append(groups[loc], windows...)
	}

	intents := make([]models.BookingIntent, 0, len(order))
	for _, loc := range order {
		intent, err := s.foldWindows(groups[loc])
		if err != nil {
			return nil, err
		}
		intents = append(intents, intent)
	}
	return intents, nil
}

func (s *DefaultBookingService) resolveSlot(ctx context.Context, slot models.SelectedSlot, targetDate string) ([]models.AvailabilityWindow, error) {
	if slot.AvailabilityID != "" {
		return s.resolveByID(ctx, slot, targetDate)
	}
	if slot.LocationID == "" {
		return nil, newError(ErrSlotUnavailable, nil, "A selected slot has no location.")
	}

	date := slot.Date
	if date == "" {
		date = targetDate
	}
	start, err := s.localTime(date, slot.Time)
	if err != nil {
		return nil, newError(ErrSlotUnavailable, err, "The selected time %s %s is not valid.", date, slot.Time)
	}

	windows, err := s.Availability.FindOpen(ctx, slot.LocationID, start.Add(-matchTolerance), start.Add(matchTolerance))
	if err != nil {
		return nil, newError(ErrSlotUnavailable, err, "Could not check availability for %s.", s.display(start))
	}

	if slot.EndTime != "" {
		end, err := s.localTime(date, slot.EndTime)
		if err != nil {
			return nil, newError(ErrSlotUnavailable, err, "The selected end time %s is not valid.", slot.EndTime)
		}
		windows = filterByEnd(windows, end)
	}

	if len(windows) == 0 {
		return nil, slotUnavailable(s.display(start))
	}
	return windows, nil
}

func (s *DefaultBookingService) resolveByID(ctx context.Context, slot models.SelectedSlot, targetDate string) ([]models.AvailabilityWindow, error) {
	label := "selected"
	if slot.Time != "" {
		date := slot.Date
		if date == "" {
			date = targetDate
		}
		if t, err := s.localTime(date, slot.Time); err == nil {
			label = s.display(t)
		}
	}

	w, err := s.Availability.GetOpenByID(ctx, slot.AvailabilityID)
	if errors.Is(err, availabilityRepo.ErrNotFound) {
		return nil, slotUnavailable(label)
	}
	if err != nil {
		return nil, newError(ErrSlotUnavailable, err, "Could not check availability for the %s slot.", label)
	}
	if slot.LocationID != "" && slot.LocationID != w.LocationID {
		return nil, slotUnavailable(s.display(w.StartTime))
	}
	return []models.AvailabilityWindow{*w}, nil
}

func slotUnavailable(label string) *BookingError {
	return newError(ErrSlotUnavailable, nil, "The %s slot is no longer available. Please pick another time.", label)
}

func (s *DefaultBookingService) localTime(date, clock string) (time.Time, error) {
	if date == "" || clock == "" {
		return time.Time{}, fmt.Errorf("missing date or time")
	}
	return time.ParseInLocation("2006-01-02 15:04", date+" "+clock, s.location())
}

func filterByEnd(windows []models.AvailabilityWindow, end time.Time) []models.AvailabilityWindow {
	var out []models.AvailabilityWindow
	for _, w := range windows {
		d := w.EndTime.Sub(end)
		if d >= -matchTolerance && d <= matchTolerance {
			out = append(out, w)
		}
	}
	return out
}

// foldWindows sorts and de-duplicates one location's windows and folds them into a
// single intent. A gap between consecutive windows is rejected.
func (s *DefaultBookingService) foldWindows(windows []models.AvailabilityWindow) (models.BookingIntent, error) {
	sorted := make([]models.AvailabilityWindow, len(windows))
	copy(sorted, windows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].StartTime.Equal(sorted[j].StartTime) {
			return sorted[i].StartTime.Before(sorted[j].StartTime)
		}
		return sorted[i].EndTime.Before(sorted[j].EndTime)
	})

	seen := map[string]bool{}
	var unique []models.AvailabilityWindow
	for _, w := range sorted {
		if seen[w.ID] {
			continue
		}
		seen[w.ID] = true
		unique = append(unique, w)
	}

	first := unique[0]
	end := first.EndTime
	ids := []string{first.ID}
	for _, w := range unique[1:] {
		if w.StartTime.After(end) {
			return models.BookingIntent{}, newError(ErrNonContiguousSelection, nil,
				"Slots at the same location must be back to back. There is a gap between %s and %s.",
				s.display(end), s.display(w.StartTime))
		}
		if w.EndTime.After(end) {
			end = w.EndTime
		}
		ids = append(ids, w.ID)
	}

	return models.BookingIntent{
		LocationID:              first.LocationID,
		StartTime:               first.StartTime,
		EndTime:                 end,
		ServiceName:             first.ServiceName,
		MatchingAvailabilityIDs: ids,
		MaxCapacity:             first.MaxCapacity,
	}, nil
}
