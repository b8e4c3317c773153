package service

import (
	"context"
	"sync"
	"time"

	"github.com/casaguide/concierge/internal/dangerzone"
	"github.com/casaguide/concierge/pkg/clock"
	"github.com/casaguide/concierge/pkg/metrics"
)

// DangerZoneManager hands out one confirm-debounce controller per
// reservation being edited. Controllers are in-memory only; the settled
// value lives on the reservation record.
type DangerZoneManager struct {
	mu          sync.Mutex
	controllers map[int64]*dangerzone.Controller

	clk          clock.Clock
	sched        dangerzone.Scheduler
	window       time.Duration
	reservations ReservationService
	metrics      *metrics.Metrics
}

func NewDangerZoneManager(clk clock.Clock, sched dangerzone.Scheduler, window time.Duration, reservations ReservationService, m *metrics.Metrics) *DangerZoneManager {
	return &DangerZoneManager{
		controllers:  make(map[int64]*dangerzone.Controller),
		clk:          clk,
		sched:        sched,
		window:       window,
		reservations: reservations,
		metrics:      m,
	}
}

func (d *DangerZoneManager) controller(id int64, deactivated bool) *dangerzone.Controller {
	d.mu.Lock()
	defer d.mu.Unlock()

	if c, ok := d.controllers[id]; ok {
		return c
	}

	c := dangerzone.New(d.clk, d.sched, d.window, deactivated, func(ctx context.Context, target bool) error {
		if d.metrics != nil {
			direction := "reactivate"
			if target {
				direction = "deactivate"
			}
			d.metrics.DeactivationsTotal.WithLabelValues(direction).Inc()
		}
		return d.reservations.SetManualDeactivation(ctx, id, target)
	})
	d.controllers[id] = c
	return c
}

// RequestDeactivate presses the deactivate action for a reservation.
// currentValue seeds the controller on first touch.
func (d *DangerZoneManager) RequestDeactivate(ctx context.Context, id int64, currentValue bool) (dangerzone.Status, error) {
	return d.controller(id, currentValue).RequestDeactivate(ctx)
}

// RequestReactivate presses the reactivate action for a reservation.
func (d *DangerZoneManager) RequestReactivate(ctx context.Context, id int64, currentValue bool) (dangerzone.Status, error) {
	return d.controller(id, currentValue).RequestReactivate(ctx)
}

// Release drops the controller for a reservation, cancelling any open
// confirmation window. Called when the editing session ends or the
// reservation is deleted.
func (d *DangerZoneManager) Release(id int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if c, ok := d.controllers[id]; ok {
		c.Close()
		delete(d.controllers, id)
	}
}

// Close cancels every open confirmation window.
func (d *DangerZoneManager) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id, c := range d.controllers {
		c.Close()
		delete(d.controllers, id)
	}
}
