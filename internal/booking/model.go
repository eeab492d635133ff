package booking

import "time"

// Status tracks a booking through its life.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Booking reserves a vehicle for a half-open date range [StartDate, EndDate).
type Booking struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	VehicleID  int64     `json:"vehicle_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	TotalPrice int64     `json:"total_price"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// Days is the number of billable days, rounding partial days up.
func (b Booking) Days() int64 {
	d := b.EndDate.Sub(b.StartDate)
	days := int64(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// Overlaps reports whether b intersects [start, end).
func (b Booking) Overlaps(start, end time.Time) bool {
	return b.StartDate.Before(end) && start.Before(b.EndDate)
}
